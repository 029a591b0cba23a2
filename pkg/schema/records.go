// Package schema defines the client-side records the RRService responses are
// resolved into. Every field is optional on the wire, so every field here has
// a usable zero value.
package schema

// TaskStatusDone is the status value the backend uses for a completed task.
const TaskStatusDone = 1

// Contact is one row of the contact list.
type Contact struct {
	Name   string `json:"name"`
	Serial int    `json:"serial"`
	Status string `json:"status"`
	Phone  string `json:"phone,omitempty"`
}

// Task is one entry of the task list.
type Task struct {
	Name    string `json:"name"`
	Serial  int    `json:"serial"`
	Contact string `json:"contact"`
	Date    string `json:"date"`
	Status  int    `json:"status"`
}

// Completed reports whether the task has been marked done.
func (t Task) Completed() bool { return t.Status == TaskStatusDone }

// Partner is a best referral partner card on the dashboard.
type Partner struct {
	Name          string `json:"name"`
	ContactSerial string `json:"contact_serial"`
	Amount        string `json:"amount"`
}

// Relationship is a contact card (runaway or recently identified).
type Relationship struct {
	Name          string `json:"name"`
	ContactSerial string `json:"contact_serial"`
	Phone         string `json:"phone"`
}

// DashboardTask is the compact task summary shown on the dashboard.
type DashboardTask struct {
	Name          string `json:"name"`
	TaskSerial    string `json:"task_serial"`
	ContactSerial string `json:"contact_serial"`
	TaskName      string `json:"task_name"`
	Date          string `json:"date"`
}

// DOVCounts are the Dates of Value counters.
type DOVCounts struct {
	HarmlessStarters    float64 `json:"harmless_starters"`
	GreenlightQuestions float64 `json:"greenlight_questions"`
	ClarityConvos       float64 `json:"clarity_convos"`
	HandwrittenNotes    float64 `json:"handwritten_notes"`
	Gifting             float64 `json:"gifting"`
	Videos              float64 `json:"videos"`
	Other               float64 `json:"other"`
	Total               float64 `json:"total"`
}

// Outcomes are the relationship outcome counters.
type Outcomes struct {
	Introductions    float64 `json:"introductions"`
	Referrals        float64 `json:"referrals"`
	ReferralPartners float64 `json:"referral_partners"`
}

// DashboardMetrics is everything the dashboard screen renders.
type DashboardMetrics struct {
	ReferralPartners     []Partner       `json:"referral_partners"`
	RunawayRelationships []Relationship  `json:"runaway_relationships"`
	RecentPartners       []Relationship  `json:"recent_partners"`
	Tasks                []DashboardTask `json:"tasks"`
	DOVCounts            DOVCounts       `json:"dov_counts"`
	Outcomes             Outcomes        `json:"outcomes"`
	Revenue              float64         `json:"revenue"`
}

// DOVDate is a dated DOV event for a contact.
type DOVDate struct {
	Name          string `json:"name"`
	ContactSerial string `json:"contact_serial"`
	Date          string `json:"date"`
}

// DOVDateList groups DOV dates by category.
type DOVDateList struct {
	Harmless   []DOVDate `json:"harmless"`
	Greenlight []DOVDate `json:"greenlight"`
	Clarity    []DOVDate `json:"clarity"`
}

// UserInfo describes the signed-in user.
type UserInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Company    string `json:"company"`
	Serial     int    `json:"serial"`
	Subscriber int    `json:"subscriber"`
}

// Help is a help topic. Fields holds every scalar child the backend sent.
type Help struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Text   string            `json:"text"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Feedback is the feedback form.
type Feedback struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Comment       string `json:"comment"`
	WantsResponse bool   `json:"wants_response"`
	WantsUpdates  bool   `json:"wants_updates"`
}

// Tag is one CRM tag reported by the setup endpoint.
type Tag struct {
	TagName string `json:"tag_name,omitempty"`
	Tag     string `json:"tag,omitempty"`
	KeapID  *int64 `json:"keap_id,omitempty"`
}

// Label returns the tag's display name.
func (t Tag) Label() string {
	if t.TagName != "" {
		return t.TagName
	}
	return t.Tag
}

// SetupResult is the success body of the CRM setup endpoint.
type SetupResult struct {
	Message     string `json:"message,omitempty"`
	CreatedTags []Tag  `json:"created_tags"`
}
