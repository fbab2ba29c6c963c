package seed

import "example.com/extracurricular/internal/domain"

// Catalog returns the Mergington High School activities loaded into an empty store.
// Each call returns fresh slices so callers may mutate the result.
func Catalog() []domain.Activity {
	return []domain.Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		{
			Name:            "Soccer Team",
			Description:     "Join the school soccer team and compete in local leagues",
			Schedule:        "Wednesdays and Fridays, 4:00 PM - 5:30 PM",
			MaxParticipants: 22,
			Participants:    []string{"lucas@mergington.edu", "mia@mergington.edu"},
		},
		{
			Name:            "Basketball Club",
			Description:     "Practice basketball skills and play friendly matches",
			Schedule:        "Tuesdays, 5:00 PM - 6:30 PM",
			MaxParticipants: 15,
			Participants:    []string{"liam@mergington.edu", "ava@mergington.edu"},
		},
		{
			Name:            "Art Club",
			Description:     "Explore painting, drawing, and other visual arts",
			Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 18,
			Participants:    []string{"ella@mergington.edu", "noah@mergington.edu"},
		},
		{
			Name:            "Drama Society",
			Description:     "Participate in theater productions and acting workshops",
			Schedule:        "Mondays, 4:00 PM - 5:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"amelia@mergington.edu", "jack@mergington.edu"},
		},
		{
			Name:            "Mathletes",
			Description:     "Compete in math competitions and solve challenging problems",
			Schedule:        "Wednesdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 16,
			Participants:    []string{"ethan@mergington.edu", "grace@mergington.edu"},
		},
		{
			Name:            "Science Club",
			Description:     "Conduct experiments and explore scientific concepts",
			Schedule:        "Fridays, 2:00 PM - 3:30 PM",
			MaxParticipants: 14,
			Participants:    []string{"chloe@mergington.edu", "benjamin@mergington.edu"},
		},
	}
}
