package agent

// Fixed, human-reviewed texts. Everything the user can receive outside the
// generative path lives here so wording changes never touch control flow.

// systemPrompt frames every backend exchange. It is the first turn of each
// conversation and survives history eviction.
const systemPrompt = "Ты — бережный и внимательный собеседник службы эмоциональной поддержки. " +
	"Твоя задача — выслушать, поддержать и помочь человеку почувствовать себя менее одиноким.\n\n" +
	"Правила:\n" +
	"1. Отвечай тепло, спокойно и без осуждения. Короткие абзацы, простой язык.\n" +
	"2. Не ставь диагнозы, не назначай лекарства и не давай медицинских советов.\n" +
	"3. Не обесценивай чувства («всё наладится», «не переживай» — так не говори).\n" +
	"4. Задавай открытые вопросы, помогай человеку выговориться.\n" +
	"5. Если в разговоре появляется тема опасности для жизни или здоровья, мягко и настойчиво " +
	"направляй к живым специалистам: 112 — экстренные службы, 051 — телефон неотложной " +
	"психологической помощи в Москве.\n" +
	"6. Никогда не обсуждай способы причинения вреда себе или другим.\n" +
	"7. Ты не заменяешь психолога или врача и честно говоришь об этом, если тебя спрашивают."

// toxicAck is sent before the backend reply when the message was classified
// as hostile. Plain text on purpose: it must survive any markup escaping.
const toxicAck = "Понимаю, что злость сейчас очень сильная. Я рядом и хочу помочь — " +
	"давай попробуем говорить спокойнее."

// fallbackReply replaces the backend answer on any backend failure. The user
// sees this exact text; the raw error goes only to the log.
const fallbackReply = "Сейчас мне не удалось сформировать ответ, но я всё равно рядом.\n\n" +
	"Попробуй простое упражнение, оно помогает вернуть опору:\n" +
	"1. Медленный вдох на 4 счёта\n" +
	"2. Задержи дыхание на 4 счёта\n" +
	"3. Медленный выдох на 6 счётов\n" +
	"Повтори несколько раз подряд.\n\n" +
	"Если тяжело прямо сейчас: **112** — экстренные службы, **051** — телефон неотложной " +
	"психологической помощи (Москва). Напиши мне снова чуть позже — я отвечу."

// safetyFooter trails every generated answer. Written without markup so it
// renders identically before and after transport escaping.
const safetyFooter = "Если станет совсем тяжело: 112 — экстренные службы, " +
	"051 — психологическая помощь. Команда /resources — все контакты."

const startReply = "Привет. Я бот эмоциональной поддержки: можно написать мне о том, " +
	"что тревожит, и я постараюсь выслушать и помочь.\n\n" +
	"Я не заменяю психолога или врача. Если есть угроза жизни — звони **112** немедленно.\n\n" +
	"Команды: **/help** — как я работаю, **/resources** — телефоны помощи."

const helpReply = "Просто напиши сообщение — я отвечу.\n\n" +
	"**/start** — краткое знакомство\n" +
	"**/resources** — телефоны экстренной и психологической помощи\n" +
	"**/help** — это сообщение\n\n" +
	"Я сохраняю только последние несколько реплик разговора и ничего не записываю навсегда. " +
	"Я не психолог и не врач; при угрозе жизни звони **112**."
