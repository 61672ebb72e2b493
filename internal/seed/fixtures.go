package seed

type teamFixture struct {
	ID          string
	Name        string
	Description string
	Heroes      []heroFixture
}

type heroFixture struct {
	Name  string
	Alias string
	Email string
	Power string
}

type workoutFixture struct {
	Name            string
	Description     string
	Difficulty      string
	DurationMinutes int
}

var teamFixtures = []teamFixture{
	{
		ID:          "team_marvel",
		Name:        "Team Marvel",
		Description: "Earth's Mightiest Heroes",
		Heroes: []heroFixture{
			{Name: "Tony Stark", Alias: "Iron Man", Email: "ironman@marvel.com", Power: "Technology"},
			{Name: "Steve Rogers", Alias: "Captain America", Email: "cap@marvel.com", Power: "Super Soldier"},
			{Name: "Thor Odinson", Alias: "Thor", Email: "thor@asgard.com", Power: "Thunder God"},
			{Name: "Natasha Romanoff", Alias: "Black Widow", Email: "blackwidow@marvel.com", Power: "Espionage"},
			{Name: "Bruce Banner", Alias: "Hulk", Email: "hulk@marvel.com", Power: "Super Strength"},
		},
	},
	{
		ID:          "team_dc",
		Name:        "Team DC",
		Description: "Justice League United",
		Heroes: []heroFixture{
			{Name: "Clark Kent", Alias: "Superman", Email: "superman@dc.com", Power: "Flight"},
			{Name: "Bruce Wayne", Alias: "Batman", Email: "batman@dc.com", Power: "Intelligence"},
			{Name: "Diana Prince", Alias: "Wonder Woman", Email: "wonderwoman@dc.com", Power: "Super Strength"},
			{Name: "Barry Allen", Alias: "Flash", Email: "flash@dc.com", Power: "Super Speed"},
			{Name: "Arthur Curry", Alias: "Aquaman", Email: "aquaman@dc.com", Power: "Aquatic"},
		},
	},
}

var workoutFixtures = []workoutFixture{
	{Name: "Power Training", Description: "Strength and power exercises", Difficulty: "Hard", DurationMinutes: 60},
	{Name: "Speed Work", Description: "Agility and speed drills", Difficulty: "Medium", DurationMinutes: 45},
	{Name: "Endurance Run", Description: "Long distance running", Difficulty: "Medium", DurationMinutes: 90},
	{Name: "Combat Training", Description: "Hand-to-hand combat practice", Difficulty: "Hard", DurationMinutes: 75},
	{Name: "Flexibility Yoga", Description: "Stretching and balance", Difficulty: "Easy", DurationMinutes: 30},
}
