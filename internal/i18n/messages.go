package i18n

type entry struct {
	en string
	sw string
}

var catalogEntries = map[string]entry{
	"error.validation_failed":     {"The request is missing or has invalid fields.", "Ombi lina sehemu zinazokosekana au zisizo sahihi."},
	"error.invalid_credentials":   {"Invalid email or password.", "Barua pepe au nenosiri si sahihi."},
	"error.not_authenticated":     {"Please sign in to continue.", "Tafadhali ingia ili kuendelea."},
	"error.not_authorized":        {"You do not have access to this resource.", "Huna ruhusa ya kufikia rasilimali hii."},
	"error.not_found":             {"The requested record was not found.", "Rekodi iliyoombwa haikupatikana."},
	"error.email_taken":           {"An account with this email already exists.", "Akaunti yenye barua pepe hii tayari ipo."},
	"error.too_many_attempts":     {"Too many failed sign-in attempts. Try again later.", "Majaribio mengi ya kuingia yameshindwa. Jaribu tena baadaye."},
	"error.rate_limited":          {"Too many requests. Slow down.", "Maombi mengi mno. Punguza kasi."},
	"error.request_in_progress":   {"A request with this idempotency key is still being processed.", "Ombi lenye ufunguo huu bado linashughulikiwa."},
	"error.storage_unavailable":   {"File storage is not configured.", "Hifadhi ya faili haijasanidiwa."},
	"error.unsupported_media":     {"This file type is not supported.", "Aina hii ya faili haitumiki."},
	"error.file_too_large":        {"The file is too large.", "Faili ni kubwa mno."},
	"error.internal":              {"Something went wrong.", "Hitilafu imetokea."},

	"pregnancy.trimester.1":       {"1st Trimester", "Trimesta ya 1"},
	"pregnancy.trimester.2":       {"2nd Trimester", "Trimesta ya 2"},
	"pregnancy.trimester.3":       {"3rd Trimester", "Trimesta ya 3"},
	"pregnancy.keyword.1":         {"Morning sickness|Fatigue|Hormonal changes|Prenatal vitamins", "Kichefuchefu cha asubuhi|Uchovu|Mabadiliko ya homoni|Vitamini za ujauzito"},
	"pregnancy.keyword.2":         {"Baby movements|Energy return|Baby gender scan|Appetite increase", "Mtoto kucheza|Nguvu kurudi|Kipimo cha jinsia ya mtoto|Hamu ya kula kuongezeka"},
	"pregnancy.keyword.3":         {"Frequent urination|Back pain|Braxton Hicks|Birth planning", "Kukojoa mara kwa mara|Maumivu ya mgongo|Braxton Hicks|Mpango wa kujifungua"},
	"pregnancy.milestone.8":       {"First heartbeat", "Mapigo ya kwanza ya moyo"},
	"pregnancy.milestone.12":      {"End of first trimester", "Mwisho wa trimesta ya kwanza"},
	"pregnancy.milestone.20":      {"Anatomy scan", "Kipimo cha maumbile"},
	"pregnancy.milestone.24":      {"Viability milestone", "Hatua ya uwezo wa kuishi"},
	"pregnancy.milestone.28":      {"Third trimester begins", "Trimesta ya tatu inaanza"},
	"pregnancy.milestone.37":      {"Full term", "Muda kamili"},

	"assistant.symptoms":          {"Common symptoms in the first trimester include morning sickness, fatigue, hormonal changes, and the need for prenatal vitamins.", "Dalili za kawaida katika trimesta ya kwanza ni pamoja na kichefuchefu cha asubuhi, uchovu, mabadiliko ya homoni, na hitaji la vitamini za ujauzito."},
	"assistant.identity":          {"I am your AI Pregnancy Assistant, here to help answer your pregnancy-related questions.", "Mimi ni Msaidizi wako wa Ujauzito, niko hapa kukusaidia kujibu maswali yako kuhusu ujauzito."},
	"assistant.due_date":          {"Your due date is an estimate of when your baby will be born, typically 40 weeks from the start of your last menstrual period.", "Tarehe yako ya kujifungua ni makadirio ya lini mtoto wako atazaliwa, kwa kawaida wiki 40 tangu mwanzo wa hedhi yako ya mwisho."},
	"assistant.fallback":          {"Sorry, I don't have an answer for that yet. You asked: %s", "Samahani, sina jibu la hilo bado. Uliuliza: %s"},
}
