package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/TristanBrian/MamaCare/internal/i18n"
	"github.com/TristanBrian/MamaCare/internal/models"
)

// Gestation is counted as 280 days ending on the due date.
const gestationDays = 280

var milestoneWeeks = []int{8, 12, 20, 24, 28, 37}

type Milestone struct {
	Week      int    `json:"week"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type PregnancyProgress struct {
	DueDate        string      `json:"dueDate"`
	DaysUntilDue   int         `json:"daysUntilDue"`
	Week           int         `json:"week"`
	Trimester      int         `json:"trimester"`
	TrimesterLabel string      `json:"trimesterLabel"`
	Keywords       []string    `json:"keywords"`
	Milestones     []Milestone `json:"milestones"`
}

type PregnancyService struct {
	location *time.Location
	now      func() time.Time
}

func NewPregnancyService(loc *time.Location) *PregnancyService {
	if loc == nil {
		loc = time.UTC
	}
	return &PregnancyService{location: loc, now: time.Now}
}

// Progress computes the pregnancy week for dueDate, or for the due date
// stored in the user's profile when dueDate is empty.
func (s *PregnancyService) Progress(user models.User, dueDate string, tag language.Tag) (PregnancyProgress, error) {
	if user.Role != models.UserRolePatient {
		return PregnancyProgress{}, ErrNotAuthorized
	}

	dueDate = strings.TrimSpace(dueDate)
	if dueDate == "" {
		dueDate = user.ProfileString("dueDate")
	}
	if dueDate == "" {
		return PregnancyProgress{}, invalid("dueDate", "is required")
	}

	loc := UserLocation(user, s.location)
	due, err := time.ParseInLocation(models.DateLayout, dueDate, loc)
	if err != nil {
		return PregnancyProgress{}, invalid("dueDate", "must be a date in YYYY-MM-DD format")
	}

	days := int(math.Ceil(due.Sub(s.now().In(loc)).Hours() / 24))
	week := int(math.Floor(float64(gestationDays-days) / 7))
	if week < 0 {
		return PregnancyProgress{}, invalid("dueDate", "is more than 40 weeks away")
	}

	trimester := TrimesterOf(week)
	p := PregnancyProgress{
		DueDate:        due.Format(models.DateLayout),
		DaysUntilDue:   days,
		Week:           week,
		Trimester:      trimester,
		TrimesterLabel: i18n.T(tag, "pregnancy.trimester."+strconv.Itoa(trimester)),
		Keywords:       strings.Split(i18n.T(tag, "pregnancy.keyword."+strconv.Itoa(trimester)), "|"),
		Milestones:     make([]Milestone, 0, len(milestoneWeeks)),
	}
	for _, w := range milestoneWeeks {
		p.Milestones = append(p.Milestones, Milestone{
			Week:      w,
			Title:     i18n.T(tag, "pregnancy.milestone."+strconv.Itoa(w)),
			Completed: week >= w,
		})
	}
	return p, nil
}

func TrimesterOf(week int) int {
	switch {
	case week < 13:
		return 1
	case week < 27:
		return 2
	}
	return 3
}
