// Package i18n formats user-facing text for the supported locales.
package i18n

import (
	"strings"

	"github.com/hylla/tavla/internal/app"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	KeyBoardHeader         = "Board «%s»"
	KeyDescription         = "Description"
	KeyConfirmDeleteColumn = "Delete column «%s» and all its tasks?"
	KeyConfirmDeleteTask   = "Delete task «%s»?"
	KeyErrNetwork          = "Network error: %s"
	KeyErrNotFound         = "Not found: %s"
	KeyErrUnauthorized     = "Not authorized, please sign in again"
	KeyLoading             = "Loading board…"
	KeyEmptyBoard          = "No columns yet"
	KeyMoving              = "Moving «%s» to position %d of %d"
	KeyNewColumn           = "New column title"
	KeyNewTask             = "New task title"
	KeyCopied              = "Copied %s"
	KeyYes                 = "yes"
	KeyNo                  = "no"

	KeyHelpGrab    = "grab column"
	KeyHelpTarget  = "move target"
	KeyHelpDrop    = "drop"
	KeyHelpCancel  = "cancel"
	KeyHelpDelete  = "delete"
	KeyHelpDelCol  = "delete column"
	KeyHelpAddCol  = "add column"
	KeyHelpAddTask = "add task"
	KeyHelpCopy    = "copy id"
	KeyHelpReload  = "reload"
	KeyHelpFocus   = "focus"
	KeyHelpHelp    = "help"
	KeyHelpQuit    = "quit"
)

var russian = map[string]string{
	KeyBoardHeader:         "Доска «%s»",
	KeyDescription:         "Описание",
	KeyConfirmDeleteColumn: "Удалить колонку «%s» со всеми задачами?",
	KeyConfirmDeleteTask:   "Удалить задачу «%s»?",
	KeyErrNetwork:          "Ошибка сети: %s",
	KeyErrNotFound:         "Не найдено: %s",
	KeyErrUnauthorized:     "Нет доступа, войдите снова",
	KeyLoading:             "Загрузка доски…",
	KeyEmptyBoard:          "Колонок пока нет",
	KeyMoving:              "Перемещение «%s» на позицию %d из %d",
	KeyNewColumn:           "Название новой колонки",
	KeyNewTask:             "Название новой задачи",
	KeyCopied:              "Скопировано: %s",
	KeyYes:                 "да",
	KeyNo:                  "нет",
	KeyHelpGrab:            "взять колонку",
	KeyHelpTarget:          "выбрать место",
	KeyHelpDrop:            "отпустить",
	KeyHelpCancel:          "отмена",
	KeyHelpDelete:          "удалить",
	KeyHelpDelCol:          "удалить колонку",
	KeyHelpAddCol:          "добавить колонку",
	KeyHelpAddTask:         "добавить задачу",
	KeyHelpCopy:            "копировать id",
	KeyHelpReload:          "обновить",
	KeyHelpFocus:           "фокус",
	KeyHelpHelp:            "помощь",
	KeyHelpQuit:            "выход",
}

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

var builder = newBuilder()

func newBuilder() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range russian {
		_ = b.SetString(language.Russian, key, text)
		_ = b.SetString(language.English, key, key)
	}
	return b
}

// Catalog formats messages for one locale.
type Catalog struct {
	printer *message.Printer
}

// New returns a catalog for locale. Unknown or empty locales fall back to
// English.
func New(locale string) *Catalog {
	return &Catalog{printer: message.NewPrinter(Match(locale), message.Catalog(builder))}
}

// Match resolves a locale name, a LANG value or the legacy "ENG"/"RUS" labels
// to a supported tag.
func Match(locale string) language.Tag {
	raw := strings.TrimSpace(locale)
	if idx := strings.IndexAny(raw, ".@"); idx >= 0 {
		raw = raw[:idx]
	}
	raw = strings.ReplaceAll(raw, "_", "-")
	switch strings.ToLower(raw) {
	case "":
		return language.English
	case "rus":
		return language.Russian
	case "eng":
		return language.English
	}
	parsed, err := language.Parse(raw)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(parsed)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// T formats key with args.
func (c *Catalog) T(key string, args ...any) string {
	return c.printer.Sprintf(key, args...)
}

// BoardHeader titles a board view.
func (c *Catalog) BoardHeader(title string) string {
	return c.T(KeyBoardHeader, title)
}

// DescriptionLabel labels the board description.
func (c *Catalog) DescriptionLabel() string {
	return c.T(KeyDescription)
}

// ConfirmDeleteColumn asks before deleting a column.
func (c *Catalog) ConfirmDeleteColumn(title string) string {
	return c.T(KeyConfirmDeleteColumn, title)
}

// ConfirmDeleteTask asks before deleting a task.
func (c *Catalog) ConfirmDeleteTask(title string) string {
	return c.T(KeyConfirmDeleteTask, title)
}

// ErrorMessage localizes a failure by kind. It satisfies app.MessageFormatter.
func (c *Catalog) ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	detail := app.Message(err)
	switch app.KindOf(err) {
	case app.KindNetwork:
		return c.T(KeyErrNetwork, detail)
	case app.KindNotFound:
		return c.T(KeyErrNotFound, detail)
	case app.KindUnauthorized:
		return c.T(KeyErrUnauthorized)
	case app.KindUnknown:
		return detail
	default:
		return detail
	}
}
