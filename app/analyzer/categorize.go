package analyzer

import (
	"math"
	"regexp"
	"strings"

	"github.com/lysyi3m/news-comb/app/news"
)

type categoryPatterns struct {
	category news.Category
	patterns []*regexp.Regexp
}

func compile(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(`(?i)` + e)
	}
	return res
}

// categoryTable is scanned in order; the first category reaching the maximum wins.
var categoryTable = []categoryPatterns{
	{news.CategoryTechnology, compile(
		`\b(ai|artificial intelligence|machine learning|tech|technology|software|app|digital|cyber|data|cloud|blockchain|cryptocurrency|bitcoin|startup|innovation|silicon valley)\b`,
		`\b(google|apple|microsoft|amazon|facebook|meta|tesla|netflix|uber|airbnb|twitter|instagram|tiktok|zoom|slack)\b`,
		`\b(iphone|android|ios|windows|mac|linux|website|internet|online|platform|algorithm|programming|coding)\b`,
	)},
	{news.CategoryBusiness, compile(
		`\b(business|economy|economic|market|markets|stock|stocks|finance|financial|investment|investor|revenue|profit|earnings|sales|company|corporate|ceo|executive)\b`,
		`\b(wall street|nasdaq|dow jones|sp500|trading|merger|acquisition|ipo|bankruptcy|recession|inflation|gdp|unemployment)\b`,
		`\b(startup|entrepreneur|venture capital|private equity|funding|valuation|unicorn|acquisition|merger)\b`,
	)},
	{news.CategoryHealth, compile(
		`\b(health|medical|medicine|doctor|hospital|patient|disease|virus|vaccine|treatment|drug|pharmaceutical|healthcare|wellness|fitness)\b`,
		`\b(covid|coronavirus|pandemic|epidemic|outbreak|symptoms|diagnosis|therapy|surgery|clinic|research|study)\b`,
		`\b(fda|cdc|who|pfizer|moderna|johnson|mental health|depression|anxiety|diabetes|cancer|heart)\b`,
	)},
	{news.CategorySports, compile(
		`\b(sports|sport|game|games|team|teams|player|players|coach|championship|tournament|league|season|match|competition)\b`,
		`\b(football|basketball|baseball|soccer|tennis|golf|hockey|olympics|nfl|nba|mlb|fifa|espn|athlete|athletic)\b`,
		`\b(super bowl|world cup|playoffs|finals|draft|trade|injury|score|win|loss|defeat|victory)\b`,
	)},
	{news.CategoryEntertainment, compile(
		`\b(entertainment|movie|movies|film|films|actor|actress|celebrity|music|album|song|concert|show|tv|television|series|streaming)\b`,
		`\b(hollywood|netflix|disney|warner|universal|paramount|oscar|emmy|grammy|box office|premiere|trailer)\b`,
		`\b(director|producer|singer|musician|band|artist|performance|review|rating|cinema|theater)\b`,
	)},
	{news.CategoryScience, compile(
		`\b(science|scientific|research|study|discovery|experiment|climate|environment|space|nasa|physics|chemistry|biology|geology)\b`,
		`\b(climate change|global warming|renewable energy|solar|wind|fossil fuel|carbon|emission|pollution|conservation)\b`,
		`\b(mars|moon|satellite|telescope|spacecraft|asteroid|planet|galaxy|universe|scientist|laboratory)\b`,
	)},
	{news.CategoryPolitics, compile(
		`\b(politics|political|government|president|congress|senate|house|election|vote|voting|campaign|politician|policy|law|legislation)\b`,
		`\b(republican|democrat|conservative|liberal|biden|trump|white house|supreme court|justice|governor|mayor)\b`,
		`\b(immigration|healthcare|taxes|budget|deficit|foreign policy|domestic|international|diplomacy|treaty)\b`,
	)},
	{news.CategoryGeneral, nil},
	{news.CategoryWorld, nil},
}

const minCategoryScore = 0.1

// Categorize assigns one of the fixed categories from title and description.
// Weak matches fall back to tag when it names a known category.
func (a *Analyzer) Categorize(title, description, tag string) (news.Category, float64) {
	title = strings.ToLower(title)
	text := title + " " + title + " " + strings.ToLower(description)

	wordCount := len(strings.Fields(text))

	best := categoryTable[0].category
	bestScore := -1.0
	for _, entry := range categoryTable {
		matches := 0
		for _, p := range entry.patterns {
			matches += len(p.FindAllStringIndex(text, -1))
		}

		score := 0.0
		if wordCount > 0 {
			score = float64(matches) / (float64(wordCount) / 100)
		}

		if score > bestScore {
			best = entry.category
			bestScore = score
		}
	}

	if bestScore < minCategoryScore {
		if news.IsCategory(tag) {
			return news.Category(tag), 0.5
		}
		return news.CategoryGeneral, 0.3
	}

	return best, math.Min(1, bestScore)
}
