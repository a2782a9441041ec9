package classify

import (
	"fmt"

	"github.com/poiesic/grocer/core"
)

// exactTable maps whole item phrases to their aisle.
var exactTable = buildTable(map[core.Category][]string{
	core.CategoryProduce: {
		"apple", "apples", "avocado", "avocados", "banana", "bananas", "blueberries",
		"strawberries", "raspberries", "blackberries", "grapes", "lemon", "lemons",
		"lime", "limes", "orange", "oranges", "mandarins", "grapefruit", "peach",
		"peaches", "pear", "pears", "plums", "cherries", "mango", "mangoes",
		"pineapple", "watermelon", "cantaloupe", "honeydew", "kiwi", "papaya",
		"pomegranate", "figs", "dates", "coconut", "rhubarb",
		"lettuce", "romaine lettuce", "iceberg lettuce", "spinach", "baby spinach",
		"kale", "arugula", "cabbage", "red cabbage", "bok choy", "swiss chard",
		"collard greens", "mixed greens", "spring mix", "broccoli", "cauliflower",
		"brussels sprouts", "carrot", "carrots", "baby carrots", "celery",
		"cucumber", "cucumbers", "zucchini", "eggplant", "squash",
		"butternut squash", "pumpkin", "tomato", "tomatoes", "cherry tomatoes",
		"bell pepper", "jalapeño", "jalapeno", "potato", "potatoes",
		"sweet potatoes", "sweet potato", "onion", "onions", "red onion",
		"yellow onion", "green onion", "green onions", "shallots", "leeks",
		"garlic", "ginger", "mushrooms", "corn", "corn on the cob", "green beans",
		"snow peas", "asparagus", "artichoke", "beets", "radishes", "turnips",
		"parsnips", "swede", "okra", "fennel", "sprouts", "coriander", "parsley",
		"basil", "mint", "dill", "rosemary", "thyme", "chives",
	},
	core.CategoryBakery: {
		"bread", "white bread", "wheat bread", "whole wheat bread", "sourdough",
		"rye bread", "baguette", "bagels", "bagel", "croissants", "croissant",
		"english muffins", "muffins", "rolls", "dinner rolls", "hamburger buns",
		"hot dog buns", "buns", "pita", "naan", "tortillas", "flour tortillas",
		"corn tortillas", "donuts", "doughnuts", "cake", "cupcakes", "pie",
		"brioche", "ciabatta", "focaccia", "pastries", "scones", "biscotti",
	},
	core.CategoryMeat: {
		"chicken", "chicken breast", "chicken breasts", "chicken thighs",
		"chicken wings", "chicken drumsticks", "whole chicken", "ground chicken",
		"ground turkey", "turkey", "turkey breast", "ground beef", "beef",
		"steak", "ribeye", "sirloin", "brisket", "roast beef", "stew meat",
		"pork", "pork chops", "pork tenderloin", "pork shoulder", "ribs",
		"bacon", "ham", "sausage", "sausages", "italian sausage", "hot dogs",
		"pepperoni", "salami", "prosciutto", "deli meat", "lamb", "lamb chops",
		"veal", "duck", "salmon", "tuna steak", "cod", "tilapia", "halibut",
		"trout", "shrimp", "scallops", "crab", "lobster", "mussels", "clams",
		"fish", "meatballs",
	},
	core.CategoryDairy: {
		"milk", "whole milk", "skim milk", "reduced fat milk", "chocolate milk",
		"buttermilk", "heavy cream", "light cream", "half and half", "sour cream",
		"whipped cream", "cream cheese", "cottage cheese", "butter",
		"unsalted butter", "margarine", "eggs", "egg", "egg whites", "cheese",
		"cheddar", "cheddar cheese", "mozzarella", "parmesan", "swiss cheese",
		"feta", "goat cheese", "brie", "ricotta", "provolone", "string cheese",
		"shredded cheese", "yogurt", "greek yogurt", "kefir", "creamer",
		"coffee creamer", "almond milk", "oat milk", "soy milk",
	},
	core.CategoryPantry: {
		"rice", "brown rice", "white rice", "jasmine rice", "basmati rice",
		"pasta", "spaghetti", "penne", "macaroni", "lasagna noodles",
		"egg noodles", "ramen", "noodles", "quinoa", "couscous", "oats",
		"oatmeal", "cereal", "granola", "cornflakes", "flour",
		"all-purpose flour", "bread flour", "sugar", "brown sugar",
		"powdered sugar", "superfine sugar", "honey", "maple syrup",
		"baking soda", "baking powder", "yeast", "cornstarch", "vanilla extract",
		"cocoa powder", "chocolate chips", "salt", "pepper", "black pepper",
		"olive oil", "vegetable oil", "canola oil", "coconut oil", "vinegar",
		"balsamic vinegar", "soy sauce", "ketchup", "mustard", "mayonnaise",
		"hot sauce", "salsa", "bbq sauce", "pasta sauce", "marinara",
		"tomato paste", "diced tomatoes", "canned tomatoes", "chicken broth",
		"beef broth", "vegetable broth", "stock", "soup", "black beans",
		"kidney beans", "pinto beans", "chickpeas", "lentils", "canned tuna",
		"peanut butter", "almond butter", "jelly", "jam", "nutella", "crackers",
		"chips", "tortilla chips", "pretzels", "popcorn", "cookies", "nuts",
		"almonds", "walnuts", "pecans", "cashews", "peanuts", "raisins",
		"breadcrumbs", "cinnamon", "paprika", "cumin", "oregano", "chili powder",
		"garlic powder", "onion powder", "bay leaves", "nutmeg",
	},
	core.CategoryFrozen: {
		"ice cream", "frozen peas", "frozen corn", "frozen vegetables",
		"frozen berries", "frozen pizza", "frozen waffles", "waffles",
		"frozen fries", "french fries", "tater tots", "fish sticks",
		"popsicles", "ice", "frozen dinners", "frozen burritos",
		"frozen yogurt", "sorbet", "gelato", "pie crust",
	},
	core.CategoryBeverages: {
		"water", "sparkling water", "bottled water", "soda", "cola", "coke",
		"diet coke", "sprite", "ginger ale", "juice", "orange juice",
		"apple juice", "cranberry juice", "lemonade", "iced tea", "tea",
		"green tea", "coffee", "ground coffee", "coffee beans", "espresso",
		"beer", "wine", "red wine", "white wine", "champagne", "vodka",
		"whiskey", "gin", "rum", "tequila", "kombucha", "energy drinks",
		"sports drinks", "gatorade", "coconut water", "hot chocolate",
	},
	core.CategoryHousehold: {
		"paper towels", "toilet paper", "tissues", "napkins", "trash bags",
		"aluminum foil", "plastic wrap", "parchment paper", "ziploc bags",
		"sandwich bags", "dish soap", "dishwasher detergent",
		"laundry detergent", "fabric softener", "dryer sheets", "bleach",
		"sponges", "cleaning spray", "disinfectant wipes", "light bulbs",
		"batteries", "hand soap", "shampoo", "conditioner", "body wash",
		"toothpaste", "toothbrush", "deodorant", "razors", "diapers",
		"baby wipes", "cat food", "dog food", "cat litter", "candles",
	},
	core.CategorySpecialty: {
		"tofu", "tempeh", "seitan", "miso", "kimchi", "sauerkraut", "tahini",
		"hummus", "fish sauce", "oyster sauce", "hoisin sauce", "sriracha",
		"gochujang", "curry paste", "coconut milk", "rice paper", "nori",
		"wasabi", "saffron", "truffle oil", "capers", "anchovies", "olives",
		"sun-dried tomatoes", "pesto", "gluten-free bread", "protein powder",
	},
})

// keywordTable maps fragments to aisles for names the exact table misses.
var keywordTable = buildTable(map[core.Category][]string{
	core.CategoryProduce: {
		"apple", "berry", "berries", "melon", "grape", "citrus", "lettuce",
		"salad", "greens", "pepper", "onion", "potato", "tomato", "squash",
		"mushroom", "bean sprout", "herb", "fruit", "vegetable", "veggie",
		"cabbage", "root", "leaf", "fresh",
	},
	core.CategoryBakery: {
		"bread", "bun", "roll", "loaf", "bagel", "muffin", "cake", "pie",
		"pastry", "tortilla", "croissant", "donut", "cookie dough",
	},
	core.CategoryMeat: {
		"beef", "ground beef", "pork", "chicken", "turkey", "lamb", "steak",
		"sausage", "bacon", "ham", "fillet", "filet", "salmon", "tuna",
		"shrimp", "fish", "seafood", "meat", "chop", "wing", "thigh", "jerky",
		"deli",
	},
	core.CategoryDairy: {
		"milk", "cheese", "yogurt", "cream", "butter", "egg", "dairy",
		"creamer", "custard",
	},
	core.CategoryPantry: {
		"sauce", "rice", "pasta", "noodle", "flour", "sugar", "oil", "vinegar",
		"spice", "seasoning", "canned", "can of", "beans", "broth", "soup",
		"cereal", "cracker", "chip", "snack", "nut", "syrup", "dressing",
		"powder", "extract", "mix", "grain", "dried", "baking", "condiment",
		"spread", "jar",
	},
	core.CategoryFrozen: {
		"frozen", "ice cream", "popsicle", "freezer",
	},
	core.CategoryBeverages: {
		"juice", "soda", "water", "tea", "coffee", "drink", "beverage", "wine",
		"beer", "ale", "lager", "liquor", "smoothie", "seltzer", "lemonade",
	},
	core.CategoryHousehold: {
		"paper", "towel", "soap", "detergent", "cleaner", "cleaning", "wipes",
		"bags", "foil", "wrap", "bleach", "sponge", "tissue", "battery",
		"bulb", "shampoo", "toothpaste", "razor", "pet food", "litter",
		"diaper", "trash",
	},
	core.CategorySpecialty: {
		"organic", "gluten-free", "vegan", "kosher", "halal", "imported",
		"artisan", "gourmet", "tofu", "miso", "curry",
	},
})

func buildTable(groups map[core.Category][]string) map[string]core.Category {
	out := make(map[string]core.Category)
	for cat, names := range groups {
		for _, name := range names {
			if prev, ok := out[name]; ok {
				panic(fmt.Sprintf("classify: %q listed under both %s and %s", name, prev, cat))
			}
			out[name] = cat
		}
	}
	return out
}
