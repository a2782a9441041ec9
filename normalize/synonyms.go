package normalize

// synonyms maps alternative or regional item names onto one canonical name.
// Targets must never appear as keys so that Normalize stays idempotent.
var synonyms = map[string]string{
	// alliums and herbs
	"scallion":       "green onion",
	"scallions":      "green onions",
	"spring onion":   "green onion",
	"spring onions":  "green onions",
	"cilantro":       "coriander",
	"fresh cilantro": "coriander",
	"rocket":         "arugula",
	"garbanzo beans": "chickpeas",
	"garbanzos":      "chickpeas",

	// produce
	"courgette":      "zucchini",
	"courgettes":     "zucchini",
	"aubergine":      "eggplant",
	"aubergines":     "eggplant",
	"capsicum":       "bell pepper",
	"bell peppers":   "bell pepper",
	"rutabaga":       "swede",
	"mangetout":      "snow peas",
	"beetroot":       "beets",
	"romaine":        "romaine lettuce",
	"spuds":          "potatoes",
	"yams":           "sweet potatoes",
	"ladies fingers": "okra",
	"clementines":    "mandarins",

	// dairy and eggs
	"curd":           "yogurt",
	"yoghurt":        "yogurt",
	"greek yoghurt":  "greek yogurt",
	"half & half":    "half and half",
	"double cream":   "heavy cream",
	"single cream":   "light cream",
	"whipping cream": "heavy cream",
	"2% milk":        "reduced fat milk",

	// bakery and pantry
	"biscuits":            "cookies",
	"caster sugar":        "superfine sugar",
	"icing sugar":         "powdered sugar",
	"confectioners sugar": "powdered sugar",
	"plain flour":         "all-purpose flour",
	"ap flour":            "all-purpose flour",
	"cornflour":           "cornstarch",
	"bicarbonate of soda": "baking soda",
	"bicarb":              "baking soda",
	"corn flakes":         "cornflakes",
	"tomato sauce":        "ketchup",
	"catsup":              "ketchup",
	"mince":               "ground beef",
	"minced beef":         "ground beef",
	"hamburger meat":      "ground beef",
	"prawns":              "shrimp",
	"gammon":              "ham",

	// beverages
	"soda pop":    "soda",
	"pop":         "soda",
	"fizzy water": "sparkling water",
	"seltzer":     "sparkling water",
	"club soda":   "sparkling water",
	"oj":          "orange juice",

	// household
	"kitchen roll":       "paper towels",
	"paper towel":        "paper towels",
	"loo roll":           "toilet paper",
	"bog roll":           "toilet paper",
	"tin foil":           "aluminum foil",
	"aluminium foil":     "aluminum foil",
	"cling film":         "plastic wrap",
	"washing up liquid":  "dish soap",
	"dishwashing liquid": "dish soap",
	"bin bags":           "trash bags",
	"garbage bags":       "trash bags",
	"nappies":            "diapers",
}
