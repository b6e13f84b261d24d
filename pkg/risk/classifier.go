package risk

import (
	"regexp"
	"strings"
)

// Result is the outcome of classifying one message. Span is the literal
// matched substring that triggered the label; it feeds redaction only and
// is never shown to the user.
type Result struct {
	Label Label
	Span  string
}

// patternGroup binds one severity level to its compiled pattern set.
// Severity order lives in the groups slice below as explicit data so tests
// can assert precedence directly.
type patternGroup struct {
	label    Label
	re       *regexp.Regexp
	redact   bool
	redacted string
}

// Go's RE2 \b is ASCII-only, so the Cyrillic patterns below rely on
// explicit whitespace/anchoring instead of word boundaries.
func compileGroup(patterns ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:` + strings.Join(patterns, "|") + `)`)
}

var groups = []patternGroup{
	{
		label:    Imminent,
		redact:   true,
		redacted: "[риск: непосредственная угроза жизни]",
		re: compileGroup(
			`(?:иду|пойду|еду|вышел|вышла)\s+(?:на|к)\s+(?:мост|мосту|крышу|крыше|рельсы|рельсам|обрыву?)`,
			`(?:стою|сижу)\s+на\s+(?:мосту|крыше|краю|подоконнике)`,
			`таблетки\s+(?:уже\s+)?(?:готовы|собраны|в\s+руке|передо\s+мной)`,
			`(?:прямо\s+)?сейчас\s+(?:покончу|прыгну|повешусь|наглотаюсь|перережу)`,
			`(?:сегодня|этой\s+ночью)\s+(?:покончу|повешусь|прыгну|умру)`,
			`(?:выпью|наглотаюсь)\s+(?:все\s+|всю\s+)?таблет(?:ки|ок)`,
			`(?:петля|верёвка|веревка)\s+(?:уже\s+)?готова`,
			`это\s+(?:моё|мое)\s+последнее\s+сообщение`,
		),
	},
	{
		label:    HighRisk,
		redact:   true,
		redacted: "[риск: суицидальные мысли]",
		re: compileGroup(
			`не\s*хочу\s+(?:больше\s+)?жить`,
			`хочу\s+умереть`,
			`хочу\s+покончить\s+с\s+собой`,
			`покончу\s+с\s+собой`,
			`уб(?:ить|ью)\s+себя`,
			`свести\s+сч[её]ты\s+с\s+жизнью`,
			`повес(?:иться|ился|илась|ишусь|усь)`,
			`повешусь`,
			`суицид`,
			`самоуби`,
			`жить\s+(?:больше\s+)?незачем`,
			`лучше\s+бы\s+(?:я\s+)?(?:умер(?:ла)?|не\s+родил(?:ся|ась))`,
			`наложить\s+на\s+себя\s+руки`,
		),
	},
	{
		label:    SelfHarmNonLethal,
		redact:   true,
		redacted: "[риск: самоповреждение]",
		re: compileGroup(
			`режу\s+себя`,
			`порезал(?:а)?\s+себя`,
			`порезы\s+на\s+руках`,
			`самоповреждени`,
			`причиняю\s+себе\s+боль`,
			`бью\s+себя`,
			`царапаю\s+себя`,
			`прижигаю\s+себя`,
		),
	},
	{
		label: ThirdPartyConcern,
		re: compileGroup(
			`(?:друг|подруга|брат|сестра|мама|папа|сын|дочь|жена|муж|коллега|знаком(?:ый|ая))\s+(?:хочет|собирается|грозится|может)\s+(?:умереть|покончить|уйти\s+из\s+жизни)`,
			`(?:он|она)\s+(?:хочет|собирается|грозится)\s+(?:покончить\s+с\s+собой|умереть|спрыгнуть)`,
			`боюсь\s+за\s+(?:него|неё|нее|друга|подругу|сына|дочь|брата|сестру)`,
			`(?:друг|подруга|брат|сестра)\s+(?:режет|ранит)\s+себя`,
		),
	},
	{
		label: Toxic,
		re: compileGroup(
			`ненавижу\s+(?:вас\s+)?всех`,
			`все\s+уроды`,
			`вы\s+все\s+(?:тупые|идиоты|дебилы)`,
			`ты\s+(?:тупой|тупая|идиот|дебил)`,
			`пош(?:ел|ла|ли)\s+(?:ты|вы)`,
		),
	},
}

// Classify labels a message by evaluating pattern groups in strict
// descending severity order; the first group with any match wins and later
// groups are not consulted. Pure and deterministic: no I/O, cannot fail,
// empty input is Benign.
func Classify(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Label: Benign}
	}
	for _, group := range groups {
		if span := group.re.FindString(text); span != "" {
			return Result{Label: group.label, Span: span}
		}
	}
	return Result{Label: Benign}
}
