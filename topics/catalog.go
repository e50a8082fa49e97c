package topics

// Category is one allowed early-learning topic area. Weight biases the
// random draw; templates carry {placeholder} slots filled from the
// category's pools.
type Category struct {
	Key       string
	Weight    int
	Templates []string

	// Slots maps a placeholder name to its pool of fill values.
	Slots map[string][]string

	// LetterWords pairs each letter with example words so {word} always
	// matches the drawn {letter}. Only the alphabet categories set it.
	LetterWords map[string][]string

	// Ranges backs {start}/{end} counting templates.
	Ranges [][2]int
}

// Catalog returns the full controlled list of topic categories. Content
// stays inside early-childhood learning; nothing outside this list is
// ever selected.
func Catalog() []Category {
	return []Category{
		{
			Key:    "english_alphabet",
			Weight: 10,
			Templates: []string{
				"Learning Letter {letter} - {letter} for {word} | ABC for Toddlers",
				"Fun with Letter {letter} - A to Z Learning for Kids",
				"Big Letter {letter} and Small Letter {letter_lower} - Alphabet Fun",
				"Letter {letter} Song - Phonics Learning for Toddlers",
			},
			LetterWords: map[string][]string{
				"A": {"Apple", "Ant"}, "B": {"Ball", "Banana"}, "C": {"Cat", "Car"},
				"D": {"Dog", "Duck"}, "E": {"Elephant", "Egg"}, "F": {"Fish", "Flower"},
				"G": {"Goat", "Grapes"}, "H": {"Hat", "House"}, "I": {"Ice cream", "Igloo"},
				"J": {"Jug", "Juice"}, "K": {"Kite", "Key"}, "L": {"Lion", "Leaf"},
				"M": {"Monkey", "Moon"}, "N": {"Nest", "Nose"}, "O": {"Orange", "Owl"},
				"P": {"Pig", "Pizza"}, "Q": {"Queen", "Quilt"}, "R": {"Rabbit", "Rain"},
				"S": {"Sun", "Star"}, "T": {"Tiger", "Tree"}, "U": {"Umbrella", "Up"},
				"V": {"Van", "Violin"}, "W": {"Watch", "Window"}, "X": {"X-ray", "Xylophone"},
				"Y": {"Yellow", "Yo-yo"}, "Z": {"Zebra", "Zoo"},
			},
		},
		{
			Key:    "hindi_alphabet",
			Weight: 8,
			Templates: []string{
				"हिंदी वर्णमाला - {letter} से {word} | Hindi Alphabet for Kids",
				"अ से अनार - Learning Hindi Letter {letter} for Toddlers",
				"मजेदार हिंदी {letter} - Fun Hindi Alphabet Learning",
			},
			LetterWords: map[string][]string{
				"अ": {"अनार", "अंगूर"}, "आ": {"आम", "आलू"}, "इ": {"इमली", "इंद्रधनुष"},
				"उ": {"उल्लू", "उंगली"}, "क": {"कबूतर", "कमल"}, "ख": {"खरगोश", "खिलौना"},
				"ग": {"गधा", "गेंद"}, "च": {"चम्मच", "चश्मा"},
			},
		},
		{
			Key:    "numbers_counting",
			Weight: 12,
			Templates: []string{
				"Learning Numbers {start} to {end} - Counting Fun for Toddlers",
				"Count with Me - Numbers {start} to {end} for Kids",
				"Fun Counting - Learning Number {number} with Objects",
				"How Many? - Learn Counting {start} to {end}",
			},
			Slots: map[string][]string{
				"number": {"1", "2", "3", "4", "5", "10", "15", "20"},
			},
			Ranges: [][2]int{{1, 5}, {1, 10}, {1, 20}, {11, 20}, {5, 10}},
		},
		{
			Key:    "colors_shapes",
			Weight: 10,
			Templates: []string{
				"Learning Colors - {color} Color Fun for Toddlers",
				"Find the {color} Things - Color Recognition for Kids",
				"Learning Shapes - {shape} Shape for Preschoolers",
				"Colors and Shapes Together - {color} {shape}",
				"Shape Sorting Game - Circles, Squares, Triangles for Toddlers",
			},
			Slots: map[string][]string{
				"color": {"Red", "Blue", "Yellow", "Green", "Orange", "Purple", "Pink", "Brown"},
				"shape": {"Circle", "Square", "Triangle", "Rectangle", "Star", "Heart", "Oval"},
			},
		},
		{
			Key:    "fruits_vegetables",
			Weight: 9,
			Templates: []string{
				"Learning Fruits - {item} is Yummy and Healthy",
				"Vegetables for Kids - Learn About {item}",
				"Healthy Eating - All About {item} for Kids",
			},
			Slots: map[string][]string{
				"fruits":     {"Apple", "Banana", "Orange", "Grapes", "Mango", "Strawberry", "Watermelon"},
				"vegetables": {"Carrot", "Tomato", "Potato", "Broccoli", "Peas", "Corn", "Pumpkin"},
			},
		},
		{
			Key:    "animals_sounds",
			Weight: 12,
			Templates: []string{
				"Animal Sounds - What Does a {animal} Say?",
				"Learning About {animal} - Fun Animal Facts for Kids",
				"Farm Animals - Meet the {animal} | Sounds and Fun",
				"Animal Families - Baby {animal} and Parent {animal}",
			},
			Slots: map[string][]string{
				"animal": {
					"Cow", "Horse", "Sheep", "Goat", "Pig", "Chicken", "Duck",
					"Lion", "Elephant", "Monkey", "Giraffe", "Zebra", "Tiger",
					"Dog", "Cat", "Rabbit", "Fish", "Bird",
				},
			},
		},
		{
			Key:    "simple_logic",
			Weight: 11,
			Templates: []string{
				"Big and Small - Learning Sizes for Toddlers",
				"More or Less - Counting and Comparing for Kids",
				"Same and Different - Matching Game for Preschoolers",
				"Tall and Short - Learning Opposites for Toddlers",
				"Full and Empty - Understanding Quantity for Kids",
			},
		},
		{
			Key:    "body_parts",
			Weight: 8,
			Templates: []string{
				"Learning Body Parts - Head, Shoulders, Knees and Toes",
				"My Body - Learning About {part} for Kids",
				"Five Senses - Learning About Eyes, Ears, Nose for Kids",
			},
			Slots: map[string][]string{
				"part": {"Head", "Eyes", "Ears", "Nose", "Mouth", "Hands", "Feet", "Hair", "Teeth"},
			},
		},
		{
			Key:    "daily_habits",
			Weight: 9,
			Templates: []string{
				"Good Habits - {habit} Every Day for Kids",
				"Daily Routine Song - {habit} Time for Toddlers",
				"Bedtime Routine - {habit} Before Sleep",
			},
			Slots: map[string][]string{
				"habit": {
					"Brush Your Teeth", "Wash Your Hands", "Take a Bath",
					"Eat Healthy Food", "Drink Water", "Sleep on Time",
					"Say Please and Thank You", "Share with Friends",
				},
			},
		},
		{
			Key:    "emotions",
			Weight: 8,
			Templates: []string{
				"Learning Emotions - Feeling {emotion} for Kids",
				"It's Okay to Feel {emotion} - Emotional Learning for Kids",
				"All About Feelings - Happy, Sad, Angry for Preschoolers",
			},
			Slots: map[string][]string{
				"emotion": {"Happy", "Sad", "Angry", "Scared", "Excited", "Surprised", "Proud", "Calm"},
			},
		},
		{
			Key:    "basic_math",
			Weight: 10,
			Templates: []string{
				"Simple Addition - Learning 1+1 for Toddlers",
				"Counting More and Less - Math Fun for Kids",
				"One More, One Less - Number Concepts for Kids",
				"Simple Subtraction - Taking Away for Toddlers",
			},
		},
		{
			Key:    "rhymes_learning",
			Weight: 9,
			Templates: []string{
				"Nursery Rhyme - {rhyme} with Learning",
				"Sing and Learn - {rhyme} for Kids",
				"Classic Rhyme - {rhyme} with Actions",
			},
			Slots: map[string][]string{
				"rhyme": {
					"Twinkle Twinkle Little Star", "ABC Song", "One Two Buckle My Shoe",
					"Head Shoulders Knees and Toes", "Wheels on the Bus",
					"Old MacDonald Had a Farm", "Five Little Ducks",
				},
			},
		},
		{
			Key:    "memory_games",
			Weight: 7,
			Templates: []string{
				"Memory Matching Game - Find the Pairs for Kids",
				"What's Missing? - Memory Game for Toddlers",
				"Remember the Pattern - Memory Fun for Preschoolers",
			},
		},
		{
			Key:    "puzzle_games",
			Weight: 7,
			Templates: []string{
				"Jigsaw Puzzle Fun - Simple Puzzles for Toddlers",
				"Shape Sorting - Puzzle Game for Kids",
				"Pattern Puzzle - What Comes Next for Kids?",
			},
		},
		{
			Key:    "observation_games",
			Weight: 6,
			Templates: []string{
				"Spot the Difference - Observation Game for Kids",
				"Find the Hidden Object - Search Game for Toddlers",
				"Count How Many - Observation Fun for Preschoolers",
			},
		},
	}
}

// hindiCategories lists the category keys available when the run
// language is Hindi.
var hindiCategories = map[string]bool{
	"hindi_alphabet":    true,
	"numbers_counting":  true,
	"colors_shapes":     true,
	"fruits_vegetables": true,
	"animals_sounds":    true,
	"simple_logic":      true,
	"daily_habits":      true,
	"emotions":          true,
	"basic_math":        true,
}
