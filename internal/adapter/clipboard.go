package adapter

import (
	"github.com/atotto/clipboard"

	"github.com/mmcdole/labeldesk/internal/domain"
)

// SystemClipboard writes to the OS clipboard
type SystemClipboard struct{}

var _ domain.Clipboard = SystemClipboard{}

// WriteText implements domain.Clipboard
func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// ClipboardAvailable reports whether a clipboard utility was found
func ClipboardAvailable() bool {
	return !clipboard.Unsupported
}
