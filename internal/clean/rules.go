package clean

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Side selects which half of a pair a rule applies to.
type Side uint8

const (
	English Side = 1 << iota
	Japanese

	Both = English | Japanese
)

// Rule is one text transformation in the noise-removal chain.
// Apply must be a pure function.
type Rule struct {
	Name  string
	Side  Side
	Apply func(string) string
}

// All patterns below compile to RE2 automata, which match in time linear in
// the input. Lazy quantifiers keep bracket spans minimal.
var (
	urlPattern = regexp.MustCompile(
		`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*(),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

	emailPattern = regexp.MustCompile(
		`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Literal backslashes and their escaped tab/CR spellings first, so that
	// `\\t` is consumed whole.
	controlPattern = regexp.MustCompile(`\\\\t|\\\\r|\\\\|\t|\r`)

	newlinePattern = regexp.MustCompile(`\\?\n`)

	// Code points with Emoji_Presentation=Yes, from emoji-data.txt of
	// Unicode 15.0. RE2 and unicode.Tables carry no emoji properties, so the
	// ranges are spelled out; update them with the next emoji-data.txt.
	emojiPattern = regexp.MustCompile(`[` +
		`\x{231A}-\x{231B}\x{23E9}-\x{23EC}\x{23F0}\x{23F3}\x{25FD}-\x{25FE}` +
		`\x{2614}-\x{2615}\x{2648}-\x{2653}\x{267F}\x{2693}\x{26A1}\x{26AA}-\x{26AB}` +
		`\x{26BD}-\x{26BE}\x{26C4}-\x{26C5}\x{26CE}\x{26D4}\x{26EA}\x{26F2}-\x{26F3}` +
		`\x{26F5}\x{26FA}\x{26FD}\x{2705}\x{270A}-\x{270B}\x{2728}\x{274C}\x{274E}` +
		`\x{2753}-\x{2755}\x{2757}\x{2795}-\x{2797}\x{27B0}\x{27BF}\x{2B1B}-\x{2B1C}` +
		`\x{2B50}\x{2B55}` +
		`\x{1F004}\x{1F0CF}\x{1F18E}\x{1F191}-\x{1F19A}\x{1F1E6}-\x{1F1FF}\x{1F201}` +
		`\x{1F21A}\x{1F22F}\x{1F232}-\x{1F236}\x{1F238}-\x{1F23A}\x{1F250}-\x{1F251}` +
		`\x{1F300}-\x{1F320}\x{1F32D}-\x{1F335}\x{1F337}-\x{1F37C}\x{1F37E}-\x{1F393}` +
		`\x{1F3A0}-\x{1F3CA}\x{1F3CF}-\x{1F3D3}\x{1F3E0}-\x{1F3F0}\x{1F3F4}` +
		`\x{1F3F8}-\x{1F43E}\x{1F440}\x{1F442}-\x{1F4FC}\x{1F4FF}-\x{1F53D}` +
		`\x{1F54B}-\x{1F54E}\x{1F550}-\x{1F567}\x{1F57A}\x{1F595}-\x{1F596}\x{1F5A4}` +
		`\x{1F5FB}-\x{1F64F}\x{1F680}-\x{1F6C5}\x{1F6CC}\x{1F6D0}-\x{1F6D2}` +
		`\x{1F6D5}-\x{1F6D7}\x{1F6DC}-\x{1F6DF}\x{1F6EB}-\x{1F6EC}\x{1F6F4}-\x{1F6FC}` +
		`\x{1F7E0}-\x{1F7EB}\x{1F7F0}\x{1F90C}-\x{1F93A}\x{1F93C}-\x{1F945}` +
		`\x{1F947}-\x{1F9FF}\x{1FA70}-\x{1FA7C}\x{1FA80}-\x{1FA88}\x{1FA90}-\x{1FABD}` +
		`\x{1FABF}-\x{1FAC5}\x{1FACE}-\x{1FADB}\x{1FAE0}-\x{1FAE8}\x{1FAF0}-\x{1FAF8}` +
		`]+`)

	bracketPattern = regexp.MustCompile(strings.Join([]string{
		// half-width
		`<.*?>`, `\{.*?\}`, `\(.*?\)`, `\[.*?\]`,
		// full-width
		`【.*?】`, `（.*?）`, `〈.*?〉`, `《.*?》`, `「.*?」`, `『.*?』`,
		`〔.*?〕`, `〖.*?〗`, `〘.*?〙`, `〚.*?〛`, `｛.*?｝`, `＜.*?＞`, `｟.*?｠`,
	}, "|"))

	unwantedPattern = regexp.MustCompile(`[*#^「」『』〈〉:;<>{}"()\[\]]+`)

	rareHiraganaPattern = regexp.MustCompile(
		`[\x{1B001}-\x{1B11F}\x{1B150}-\x{1B152}\x{1F200}]+`)

	rareKatakanaPattern = regexp.MustCompile(
		`[\x{31F0}-\x{31FF}\x{32D0}-\x{32FE}\x{3300}-\x{3357}` +
			`\x{1AFF0}-\x{1AFFE}\x{1B000}\x{1B120}-\x{1B122}\x{1B164}-\x{1B167}]+`)

	multiSpacePattern = regexp.MustCompile(`[ 　]{2,}`)

	encodingArtifactPattern = regexp.MustCompile(`0000,0000,0000,`)
)

func remove(re *regexp.Regexp) func(string) string {
	return func(s string) string { return re.ReplaceAllLiteralString(s, "") }
}

func replace(re *regexp.Regexp, with string) func(string) string {
	return func(s string) string { return re.ReplaceAllLiteralString(s, with) }
}

// NormalizeNFKC applies Unicode NFKC and trims surrounding whitespace.
func NormalizeNFKC(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// DefaultRules returns the noise-removal chain in application order.
//
// URLs and e-mail addresses go before bracket spans so that parentheses
// inside a link do not eat the surrounding text, and the multi-space collapse
// runs after every rule that can leave a gap behind.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "nfkc", Side: Both, Apply: NormalizeNFKC},
		{Name: "url", Side: Both, Apply: remove(urlPattern)},
		{Name: "email", Side: Both, Apply: remove(emailPattern)},
		{Name: "control", Side: Both, Apply: replace(controlPattern, " ")},
		{Name: "newline", Side: Both, Apply: remove(newlinePattern)},
		{Name: "emoji", Side: Both, Apply: remove(emojiPattern)},
		{Name: "brackets", Side: Both, Apply: remove(bracketPattern)},
		{Name: "unwanted", Side: Both, Apply: remove(unwantedPattern)},
		{Name: "rare_hiragana", Side: Japanese, Apply: remove(rareHiraganaPattern)},
		{Name: "rare_katakana", Side: Japanese, Apply: remove(rareKatakanaPattern)},
		{Name: "multi_space", Side: Both, Apply: replace(multiSpacePattern, " ")},
		{Name: "encoding_artifact", Side: Both, Apply: remove(encodingArtifactPattern)},
		{Name: "trim", Side: Both, Apply: strings.TrimSpace},
	}
}
