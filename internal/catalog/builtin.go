package catalog

import "github.com/scythe504/undercover-backend/internal"

var builtinCategories = []internal.Category{
	{
		ID:   "general",
		Name: "General",
		Words: []string{
			"School", "University", "Airport", "Hospital", "Cinema", "Park",
			"Restaurant", "Market", "Stadium", "Library", "Mosque", "Hotel",
		},
	},
	{
		ID:   "animals",
		Name: "Animals",
		Words: []string{
			"Lion", "Tiger", "Elephant", "Giraffe", "Monkey", "Dog",
			"Cat", "Horse", "Camel", "Falcon", "Eagle", "Penguin",
		},
	},
	{
		ID:   "food",
		Name: "Food",
		Words: []string{
			"Pizza", "Burger", "Shawarma", "Kabsa", "Sushi", "Pasta",
			"Falafel", "Fish", "Steak", "Salad", "Soup",
		},
	},
	{
		ID:   "objects",
		Name: "Objects",
		Words: []string{
			"Pen", "Book", "Phone", "Laptop", "Watch", "Glasses",
			"Key", "Bag", "Chair", "Table", "Car",
		},
	},
	{
		ID:   "tech",
		Name: "Tech & Apps",
		Words: []string{
			"iPhone", "Android", "Windows", "Facebook", "Twitter",
			"Instagram", "WhatsApp", "YouTube", "Google", "TikTok",
		},
	},
}

// BuiltinCategories returns the word lists compiled into the binary.
func BuiltinCategories() []internal.Category {
	out := make([]internal.Category, len(builtinCategories))
	copy(out, builtinCategories)
	return out
}

func Builtin(opts ...Option) *Catalog {
	c, err := New(builtinCategories, opts...)
	if err != nil {
		panic(err)
	}
	return c
}
