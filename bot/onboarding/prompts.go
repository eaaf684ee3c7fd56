package onboarding

// Button labels. The labels double as the match vocabulary for each step,
// so they must stay byte-identical between the keyboard and the router.
const (
	ButtonBegin   = "Начать"
	ButtonAccept  = "Принять и продолжить"
	ButtonSOS     = "🚨 SOS"
	ButtonBooking = "👥 Записаться к психологу"
)

// CallbackAcceptTerms is the callback key of the terms-acceptance button.
const CallbackAcceptTerms = "accept_terms"

const termsURL = "https://drive.google.com/file/d/1BNAdSPYoec5faELaqt5gNYVdCoUy93k7/view?usp=sharing"

const welcomeText = "Что умеет этот бот?\n" +
	"NoSmoke Coach — умный помощник на пути к свободе от курения.\n\n" +
	"🧠 Научный подход (CBT, мотивация, дыхание)\n" +
	"🧩 Программа 45 дней с заданиями\n" +
	"🤖 ИИ-помощник 24/7\n" +
	"🚨 Кнопка SOS\n" +
	"🪞 Рефлексия и осознанность\n" +
	"📊 Учёт прогресса\n" +
	"⏱️ Всего 10–15 мин в день (меньше, чем на сигареты)\n" +
	"🎁 Бонус: запись к психологу 20 мин (1000₽ / $10)\n\n" +
	"💬 После нажатия /start\n" +
	"📅 Первые 7 дней — бесплатно, затем 1790₽ или 17,9 USDT (разово)\n\n" +
	"✅ Отвечая на вопросы и начиная первый день, вы принимаете условия [пользовательского соглашения](" + termsURL + ")."

const termsText = "📄 Прежде чем начать, ознакомьтесь с условиями.\n\n" +
	"Вы соглашаетесь с [пользовательским соглашением](" + termsURL + ")."

const (
	questionDuration = "1️⃣ Как давно вы курите?"
	questionCount    = "2️⃣ Сколько сигарет в день вы курите?"
	questionProduct  = "3️⃣ Что именно вы курите чаще всего?"
	questionAttempts = "4️⃣ Сколько раз вы уже пытались бросить?"
)

const (
	dayOneIntro = "✅ Отлично! Первый день начинается!"

	dayOneText = "📅 День 1: Определение мотивации\n\n" +
		"✍️ Запишите причины, по которым вы решили бросить курить.\n" +
		"Это активирует внутреннюю мотивацию и помогает выдержать первые дни.\n\n" +
		"📘 Подсказка: нажмите SOS, если тяжело."

	// BookingText is the static reply to the counselor button; the actual
	// booking flow lives outside the bot.
	BookingText = "👥 Запись к психологу: сессия 20 минут — 1000₽ / $10.\n" +
		"Напишите @nosmoke_support, и мы подберём удобное время."
)

// SOS presentation texts. Failure details stay in logs; the user only
// ever sees the apology.
const (
	ThinkingText = "🧠 Думаю над ответом..."
	AnswerPrefix = "👏 Ответ:\n"
	ApologyText  = "⚠️ Не получилось получить ответ. Попробуйте ещё раз чуть позже."
)

// ErrorText is the generic reply when an update could not be processed.
// Details stay in logs.
const ErrorText = "⚠️ Что-то пошло не так. Попробуйте ещё раз."

// Answer vocabularies, one per survey step.
var (
	durationOptions = []string{"Меньше года", "1–5 лет", "6–10 лет", "Больше 10 лет"}
	countOptions    = []string{"1–9", "10–14", "15–19", "20 и больше"}
	productOptions  = []string{"Сигареты", "Вейп", "Айкос / стики", "Всё понемногу"}
	attemptOptions  = []string{"Ни разу", "1–2", "3–5", "Больше 5", "Бросал(а), но сорвался(ась)"}
)
