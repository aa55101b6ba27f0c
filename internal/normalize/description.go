package normalize

import (
	"regexp"
	"strings"

	"github.com/finproc/statement-processor/internal/models"
)

// Boilerplate markers that banks prepend or append to descriptions.
var boilerplatePhrases = []string{
	"POS TRANSACTION",
	"POS PURCHASE",
	"DEBIT CARD PURCHASE",
	"ATM WITHDRAWAL",
	"ONLINE PAYMENT",
	"E-TRANSFER",
	"AUTOPAY",
	"ACH PAYMENT",
	"ACH DEPOSIT",
	"DIRECT DEPOSIT",
	"DIRECT DEBIT",
	"PURCHASE AUTHORIZED ON",
	"RECURRING PAYMENT",
	"CHECK CARD",
	"CHECKCARD",
	"CKCD",
	"PAYPAL INST XFER",
	"PYMT ID:",
	"REF #",
	"REFERENCE #",
	"TRANSACTION #",
	"AUTHORIZATION CODE",
}

type merchantAlias struct {
	abbrev string
	name   string
}

// Merchant abbreviations normalized to their common names. Longer aliases
// come before their prefixes so "UBER EATS" is not rewritten as "Uber".
var merchantAliases = []merchantAlias{
	{"AMZNMKTPLCE", "Amazon Marketplace"},
	{"AMAZON.COM", "Amazon"},
	{"AMZN", "Amazon"},
	{"WALMART", "Walmart"},
	{"STARBUCKS", "Starbucks"},
	{"SBUX", "Starbucks"},
	{"MCD", "McDonald's"},
	{"COSTCO WHSE", "Costco"},
	{"COSTCO", "Costco"},
	{"UBER EATS", "Uber Eats"},
	{"UBEREATS", "Uber Eats"},
	{"UBER", "Uber"},
	{"DOORDASH", "DoorDash"},
	{"GRUBHUB", "Grubhub"},
	{"INSTACART", "Instacart"},
	{"LYFT", "Lyft"},
	{"VENMO", "Venmo"},
	{"PAYPAL", "PayPal"},
	{"ZELLE", "Zelle"},
	{"TARGET", "Target"},
	{"TGT", "Target"},
	{"KROGER", "Kroger"},
	{"TRADER JOE", "Trader Joe's"},
	{"WHOLE FOODS", "Whole Foods"},
	{"WHOLEFDS", "Whole Foods"},
	{"NETFLIX", "Netflix"},
	{"NFLX", "Netflix"},
	{"SPOTIFY", "Spotify"},
	{"HULU", "Hulu"},
	{"DISNEY PLUS", "Disney+"},
}

var (
	boilerplateRes []*regexp.Regexp
	merchantRes    []*regexp.Regexp
	trailingDateRe = regexp.MustCompile(`\b\d{2}/\d{2}/\d{2,4}\b\s*$`)
	trailingIDRe   = regexp.MustCompile(`\b\d{6,}\s*$`)
	trailingHashRe = regexp.MustCompile(`#\d{4,}\s*$`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

func init() {
	boilerplateRes = make([]*regexp.Regexp, 0, len(boilerplatePhrases))
	for _, phrase := range boilerplatePhrases {
		boilerplateRes = append(boilerplateRes, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(phrase)+`\s*`))
	}
	merchantRes = make([]*regexp.Regexp, 0, len(merchantAliases))
	for _, alias := range merchantAliases {
		merchantRes = append(merchantRes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(alias.abbrev)+`\b`))
	}
}

// CleanDescription strips boilerplate phrases, trailing reference noise
// and extra whitespace, normalizes known merchant names and title-cases
// the result. An empty result is replaced by the fixed placeholder, so
// the returned string is never empty.
func CleanDescription(description string) string {
	description = strings.TrimSpace(description)

	for _, re := range boilerplateRes {
		description = re.ReplaceAllString(description, "")
	}

	description = trailingDateRe.ReplaceAllString(description, "")
	description = trailingIDRe.ReplaceAllString(description, "")
	description = trailingHashRe.ReplaceAllString(description, "")
	description = whitespaceRe.ReplaceAllString(description, " ")
	description = strings.TrimSpace(description)

	for i, alias := range merchantAliases {
		if merchantRes[i].MatchString(description) {
			description = merchantRes[i].ReplaceAllString(description, alias.name)
			break
		}
	}

	description = titleCase(description)
	if description == "" {
		return models.DefaultDescription
	}
	return description
}

// titleCase capitalizes each word. Short all-caps words read as
// acronyms (IBM, ATM, US) and are left alone; longer all-caps words are
// just shouting bank exports and get capitalized like anything else.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 1 && len(word) <= 4 && word == strings.ToUpper(word) && strings.ContainsAny(word, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			continue
		}
		r := []rune(word)
		words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}
