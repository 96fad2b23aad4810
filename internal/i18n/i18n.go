package i18n

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	FR = "FR"
	EN = "EN"
	AR = "AR"
)

type Labels struct {
	Title        string
	LastUpdate   string
	Refresh      string
	Contact      string
	FilterTitle  string
	DateRange    string
	Clients      string
	Vehicles     string
	Products     string
	Drivers      string
	GlobalSearch string
	Apply        string
	TabTickets   string
	TabStats     string
	TabExport    string
	TicketsFound string
	DocPreview   string
	DownloadPDF  string
	PDFMissing   string
	Loading      string
	Waiting      string
	TotalPrice   string
	TotalWeight  string
	Count        string
	ByHour       string
	TopProducts  string
	Currency     string
	WeightUnit   string
}

// Locale is a label table plus the number formatting of one language.
type Locale struct {
	Code   string
	Name   string
	Tag    language.Tag
	RTL    bool
	Labels Labels

	printer *message.Printer
}

var (
	supported = []language.Tag{language.French, language.English, language.Arabic}
	codes     = []string{FR, EN, AR}
	matcher   = language.NewMatcher(supported)
)

var locales = map[string]Locale{
	FR: {
		Code: FR,
		Name: "Français",
		Tag:  language.French,
		Labels: Labels{
			Title:        "Tableau de Bord des Opérations",
			LastUpdate:   "Dernière mise à jour :",
			Refresh:      "Actualiser les données",
			Contact:      "Contact :",
			FilterTitle:  "Filtres & Recherche Avancée",
			DateRange:    "Période",
			Clients:      "Clients",
			Vehicles:     "Véhicules",
			Products:     "Produits",
			Drivers:      "Chauffeurs",
			GlobalSearch: "Recherche Globale (Note, ID...)",
			Apply:        "Appliquer",
			TabTickets:   "Opérations",
			TabStats:     "Statistiques & Totaux",
			TabExport:    "Exporter Sélection",
			TicketsFound: "Tickets Trouvés",
			DocPreview:   "Aperçu du Document",
			DownloadPDF:  "Télécharger PDF",
			PDFMissing:   "PDF Introuvable",
			Loading:      "Chargement...",
			Waiting:      "En attente de données...",
			TotalPrice:   "Total Prix",
			TotalWeight:  "Poids Total",
			Count:        "Nbr Opérations",
			ByHour:       "Trafic (Heure)",
			TopProducts:  "Top Produits",
			Currency:     "DH",
			WeightUnit:   "kg",
		},
	},
	EN: {
		Code: EN,
		Name: "English",
		Tag:  language.English,
		Labels: Labels{
			Title:        "Operations Dashboard",
			LastUpdate:   "Last update:",
			Refresh:      "Refresh data",
			Contact:      "Contact:",
			FilterTitle:  "Advanced Filters & Search",
			DateRange:    "Date Range",
			Clients:      "Clients",
			Vehicles:     "Vehicles",
			Products:     "Products",
			Drivers:      "Drivers",
			GlobalSearch: "Global Search (Note, ID...)",
			Apply:        "Apply",
			TabTickets:   "Operations",
			TabStats:     "Statistics & Totals",
			TabExport:    "Export Selection",
			TicketsFound: "Tickets Found",
			DocPreview:   "Document Preview",
			DownloadPDF:  "Download PDF",
			PDFMissing:   "PDF Not Found",
			Loading:      "Loading...",
			Waiting:      "Waiting for data...",
			TotalPrice:   "Total Price",
			TotalWeight:  "Total Weight",
			Count:        "Total Ops",
			ByHour:       "Traffic (Hour)",
			TopProducts:  "Top Products",
			Currency:     "MAD",
			WeightUnit:   "kg",
		},
	},
	AR: {
		Code: AR,
		Name: "العربية",
		Tag:  language.Arabic,
		RTL:  true,
		Labels: Labels{
			Title:        "لوحة قيادة العمليات",
			LastUpdate:   "آخر تحديث:",
			Refresh:      "تحديث البيانات",
			Contact:      "للتواصل:",
			FilterTitle:  "بحث وتصفية متقدمة",
			DateRange:    "الفترة الزمنية",
			Clients:      "العملاء",
			Vehicles:     "المركبات",
			Products:     "المنتجات",
			Drivers:      "السائقين",
			GlobalSearch: "بحث شامل (ملاحظات، رقم...)",
			Apply:        "تطبيق",
			TabTickets:   "العمليات",
			TabStats:     "الإحصائيات والمجاميع",
			TabExport:    "تصدير البيانات المختارة",
			TicketsFound: "التذاكر الموجودة",
			DocPreview:   "معاينة الوثيقة",
			DownloadPDF:  "تحميل PDF",
			PDFMissing:   "الملف غير موجود",
			Loading:      "جار التحميل...",
			Waiting:      "في انتظار البيانات...",
			TotalPrice:   "إجمالي السعر",
			TotalWeight:  "إجمالي الوزن",
			Count:        "عدد العمليات",
			ByHour:       "حركة المرور (ساعة)",
			TopProducts:  "أكثر المنتجات",
			Currency:     "درهم",
			WeightUnit:   "كغ",
		},
	},
}

// Get returns the locale for a code such as "FR" or "en". Unknown codes
// get English.
func Get(code string) Locale {
	l, ok := locales[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		l = locales[EN]
	}
	// Amounts keep Latin digits in every language.
	tag := l.Tag
	if l.Code == AR {
		tag = language.MustParse("ar-u-nu-latn")
	}
	l.printer = message.NewPrinter(tag)
	return l
}

// All returns the supported locales in menu order.
func All() []Locale {
	out := make([]Locale, 0, len(codes))
	for _, c := range codes {
		out = append(out, Get(c))
	}
	return out
}

// Resolve picks a locale from an explicit choice, then an Accept-Language
// header, then fallback.
func Resolve(choice, acceptLanguage, fallback string) Locale {
	if code, ok := match(choice); ok {
		return Get(code)
	}
	if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
		if _, idx, conf := matcher.Match(tags...); conf != language.No {
			return Get(codes[idx])
		}
	}
	return Get(fallback)
}

func match(choice string) (string, bool) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return "", false
	}
	if _, ok := locales[strings.ToUpper(choice)]; ok {
		return strings.ToUpper(choice), true
	}
	tag, err := language.Parse(choice)
	if err != nil {
		return "", false
	}
	if _, idx, conf := matcher.Match(tag); conf != language.No {
		return codes[idx], true
	}
	return "", false
}

// Dir is the value of the HTML dir attribute.
func (l Locale) Dir() string {
	if l.RTL {
		return "rtl"
	}
	return "ltr"
}

// Amount formats d with two decimals and the language's grouping.
func (l Locale) Amount(d decimal.Decimal) string {
	p := l.printer
	if p == nil {
		p = message.NewPrinter(l.Tag)
	}
	return p.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func (l Locale) Money(d decimal.Decimal) string {
	return l.Amount(d) + " " + l.Labels.Currency
}

func (l Locale) Weight(d decimal.Decimal) string {
	return l.Amount(d) + " " + l.Labels.WeightUnit
}
