package formatter

import (
	"fmt"
	"io"
	"os"

	"github.com/user/paywall-reader/internal/entity"
	"golang.org/x/text/encoding/unicode"
)

// DefaultFileName is where SaveToFile writes when no name is given.
const DefaultFileName = "article.txt"

// Printer writes formatted articles to an output stream as UTF-8. Ill-formed
// byte sequences are replaced with U+FFFD instead of failing the write.
type Printer struct {
	out io.Writer
}

// NewPrinter wraps w with a replacing UTF-8 encoder.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: unicode.UTF8.NewEncoder().Writer(w)}
}

// Print writes the formatted article followed by a newline.
func (p *Printer) Print(a *entity.Article) error {
	_, err := io.WriteString(p.out, Format(a)+"\n")
	return err
}

// Println writes a plain message line through the same encoding.
func (p *Printer) Println(msg string) error {
	_, err := io.WriteString(p.out, msg+"\n")
	return err
}

// SaveToFile writes the formatted article to filename, creating or truncating it.
func SaveToFile(filename string, a *entity.Article) (err error) {
	if filename == "" {
		filename = DefaultFileName
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", filename, cerr)
		}
	}()

	w := unicode.UTF8.NewEncoder().Writer(f)
	if _, err = io.WriteString(w, Format(a)); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
