package export

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/tabular"
)

// Message keys. The English text is also the fallback format.
const (
	msgSaved       = "Saved %s (version %s, %d rows x %d columns, %d bytes)"
	msgListed      = "Found %d saved files"
	msgInvalid     = "Invalid request: %s"
	msgMalformed   = "Input is not valid JSON: %v"
	msgUnsupported = "Unsupported data shape: %v"
	msgEmpty       = "The data is empty; no file was created"
	msgRender      = "Failed to render %s: %v"
	msgStore       = "store failure: %v"
	msgTimeout     = "store timed out after %v"
	msgList        = "Failed to list files: %v"
	msgInternal    = "Internal error: %v"
)

var japanese = map[string]string{
	msgSaved:       "%sを保存しました（バージョン %s、%d行 x %d列、%dバイト）",
	msgListed:      "保存済みファイルが%d件あります",
	msgInvalid:     "リクエストが不正です: %s",
	msgMalformed:   "入力が有効なJSONではありません: %v",
	msgUnsupported: "サポートされていないデータ形式です: %v",
	msgEmpty:       "データが空です。ファイルを作成できません。",
	msgRender:      "%sの生成に失敗しました: %v",
	msgStore:       "Artifact保存エラー: %v",
	msgTimeout:     "Artifact保存がタイムアウトしました（%v）",
	msgList:        "ファイル一覧取得エラー: %v",
	msgInternal:    "内部エラー: %v",
}

// Locales lists the supported message locales.
var Locales = []language.Tag{language.English, language.Japanese}

var (
	translations = buildCatalog()
	localeMatch  = language.NewMatcher(Locales)
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range japanese {
		if err := b.SetString(language.Japanese, key, msg); err != nil {
			panic(fmt.Sprintf("export: invalid translation %q: %v", key, err))
		}
	}
	return b
}

// messages renders result messages in one locale.
type messages struct {
	printer *message.Printer
}

// newMessages returns messages for the best supported match of locale.
// Unparseable locales fall back to English.
func newMessages(locale string) *messages {
	tag := language.English
	if parsed, err := language.Parse(locale); err == nil {
		_, index, _ := localeMatch.Match(parsed)
		tag = Locales[index]
	}
	return &messages{printer: message.NewPrinter(tag, message.Catalog(translations))}
}

func (m *messages) saved(r *Result) string {
	return m.printer.Sprintf(msgSaved, r.Filename, r.Version.String(), r.Rows, r.Columns, r.SizeBytes)
}

func (m *messages) listed(count int) string {
	return m.printer.Sprintf(msgListed, count)
}

func (m *messages) listFailed(err error) string {
	return m.printer.Sprintf(msgList, err)
}

// failure describes a failed export in the caller's language.
func (m *messages) failure(err error, format tabular.Format) string {
	var (
		invalid  *InvalidRequestError
		timeout  *artifact.TimeoutError
		storeErr *artifact.StoreError
		cause    = errors.Unwrap(err)
	)
	if cause == nil {
		cause = err
	}

	switch KindOf(err) {
	case KindInvalidRequest:
		if errors.As(err, &invalid) {
			return m.printer.Sprintf(msgInvalid, invalid.Reason)
		}
		return m.printer.Sprintf(msgInvalid, err)
	case KindMalformedInput:
		return m.printer.Sprintf(msgMalformed, cause)
	case KindUnsupportedShape:
		return m.printer.Sprintf(msgUnsupported, err)
	case KindEmptyDataset:
		return m.printer.Sprintf(msgEmpty)
	case KindRender:
		return m.printer.Sprintf(msgRender, string(format), cause)
	case KindTimeout:
		if errors.As(err, &timeout) {
			return m.printer.Sprintf(msgTimeout, timeout.Timeout)
		}
		return m.printer.Sprintf(msgTimeout, err)
	case KindStore:
		if errors.As(err, &storeErr) {
			return m.printer.Sprintf(msgStore, storeErr.Cause)
		}
		return m.printer.Sprintf(msgStore, err)
	default:
		return m.printer.Sprintf(msgInternal, err)
	}
}
