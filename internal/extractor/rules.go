package extractor

// Rules holds, per field, the ordered CSS selectors tried against the rendered page.
type Rules struct {
	Title  []string `mapstructure:"title"`
	Author []string `mapstructure:"author"`
	Date   []string `mapstructure:"date"`
	Body   []string `mapstructure:"body"`
}

// DefaultRules returns the selector lists that work for most news layouts and mirrors.
func DefaultRules() Rules {
	return Rules{
		Title: []string{
			"h1",
			"article h1",
			".article-title",
			"header h1",
			`[data-test="headline"]`,
			".article__headline",
		},
		Author: []string{
			".author",
			`[rel="author"]`,
			".article-author",
			`[data-test="author-name"]`,
			".article__byline",
		},
		Date: []string{
			"time",
			".date",
			".article-date",
			`[data-test="timestamp"]`,
			".article__timestamp",
		},
		Body: []string{
			"article",
			".article-body",
			`[data-test="article-body"]`,
			".content",
			"main article",
			"#article-body",
			".article__content",
		},
	}
}

// WithDefaults fills every empty list from DefaultRules.
func (r Rules) WithDefaults() Rules {
	def := DefaultRules()
	if len(r.Title) == 0 {
		r.Title = def.Title
	}
	if len(r.Author) == 0 {
		r.Author = def.Author
	}
	if len(r.Date) == 0 {
		r.Date = def.Date
	}
	if len(r.Body) == 0 {
		r.Body = def.Body
	}
	return r
}
