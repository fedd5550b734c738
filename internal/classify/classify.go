// Package classify assigns a document type to extracted text using ordered
// sets of signature patterns. Classification is a pure function of the text:
// the same input always yields the same category.
package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Document type identifiers. General is the fallback when no category
// accumulates enough signature matches.
const (
	TypeBankStatement   = "bankStatement"
	TypeFinancialReport = "financialReport"
	TypeInvoice         = "invoice"
	TypeInvestment      = "investment"
	TypeGeneral         = "general"
)

// Result is the outcome of a classification.
type Result struct {
	DocumentType string `json:"document_type"`
	Matches      int    `json:"matches"`
}

// Config controls classification behavior.
type Config struct {
	// MinMatches is how many signatures of a category must match before the
	// category is selected.
	MinMatches int `mapstructure:"min_matches" yaml:"min_matches" json:"min_matches"`
	// ExtraSignatures adds patterns to a category (existing or new). New
	// categories are evaluated after the built-in ones.
	ExtraSignatures map[string][]string `mapstructure:"extra_signatures" yaml:"extra_signatures" json:"extra_signatures,omitempty"`
}

// DefaultConfig returns the classification defaults.
func DefaultConfig() Config {
	return Config{MinMatches: 2}
}

type patternSet struct {
	category string
	patterns []*regexp.Regexp
}

// Classifier evaluates its categories in priority order and selects the
// first one reaching the match threshold.
type Classifier struct {
	minMatches int
	sets       []patternSet
}

// builtinSignatures lists the categories in evaluation order with their
// signature patterns. Patterns are matched against lowercased text.
var builtinSignatures = []struct {
	category   string
	signatures []string
}{
	{TypeBankStatement, []string{
		`balance`, `account.*number`, `routing.*number`, `transaction`,
		`deposit`, `withdrawal`, `beginning.*balance`, `ending.*balance`,
		`statement.*period`,
	}},
	{TypeFinancialReport, []string{
		`assets`, `liabilities`, `equity`, `revenue`, `expenses`,
		`net.*income`, `cash.*flow`, `balance.*sheet`,
	}},
	{TypeInvoice, []string{
		`invoice`, `bill.*to`, `ship.*to`, `invoice.*number`, `due.*date`,
		`amount.*due`, `subtotal`, `tax`, `total`,
	}},
	{TypeInvestment, []string{
		`portfolio`, `holdings`, `shares`, `dividend`, `yield`,
		`market.*value`, `cost.*basis`, `gain.*loss`,
	}},
}

// New compiles a classifier from the configuration.
func New(cfg Config) (*Classifier, error) {
	if cfg.MinMatches < 1 {
		cfg.MinMatches = DefaultConfig().MinMatches
	}
	c := &Classifier{minMatches: cfg.MinMatches}

	extra := make(map[string][]string, len(cfg.ExtraSignatures))
	for category, sigs := range cfg.ExtraSignatures {
		extra[category] = sigs
	}

	for _, set := range builtinSignatures {
		sigs := append(append([]string{}, set.signatures...), extra[set.category]...)
		delete(extra, set.category)
		compiled, err := compile(set.category, sigs)
		if err != nil {
			return nil, err
		}
		c.sets = append(c.sets, compiled)
	}
	extraCategories := make([]string, 0, len(extra))
	for category := range extra {
		extraCategories = append(extraCategories, category)
	}
	sort.Strings(extraCategories)
	for _, category := range extraCategories {
		compiled, err := compile(category, extra[category])
		if err != nil {
			return nil, err
		}
		c.sets = append(c.sets, compiled)
	}
	return c, nil
}

func compile(category string, signatures []string) (patternSet, error) {
	set := patternSet{category: category}
	for _, sig := range signatures {
		re, err := regexp.Compile(sig)
		if err != nil {
			return patternSet{}, fmt.Errorf("classify: bad signature %q for %s: %w", sig, category, err)
		}
		set.patterns = append(set.patterns, re)
	}
	return set, nil
}

// Classify lowercases text and returns the first category in priority order
// whose signatures reach the match threshold, or the general fallback.
func (c *Classifier) Classify(text string) Result {
	lower := strings.ToLower(text)
	for _, set := range c.sets {
		matches := 0
		for _, re := range set.patterns {
			if re.MatchString(lower) {
				matches++
			}
		}
		if matches >= c.minMatches {
			return Result{DocumentType: set.category, Matches: matches}
		}
	}
	return Result{DocumentType: TypeGeneral}
}
