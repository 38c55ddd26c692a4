package model

// Routine is an active goal as shown on the routine list.
type Routine struct {
	GoalID          string     `json:"goalId"`
	BookID          int64      `json:"bookId"`
	BookTitle       string     `json:"bookTitle"`
	BookAuthor      string     `json:"bookAuthor"`
	BookCoverURL    string     `json:"bookCoverUrl"`
	BookPublisher   string     `json:"bookPublisher"`
	BookPubYear     int        `json:"bookPublishYear"`
	TotalPages      int        `json:"totalPages"`
	BookStatus      ReadStatus `json:"bookStatus"`
	Progress        int        `json:"progress"`
	Period          GoalPeriod `json:"period"`
	Metric          GoalMetric `json:"metric"`
	TargetAmount    int        `json:"targetAmount"`
	AchievedAmount  int        `json:"achievedAmount"`
	RemainingAmount int        `json:"remainingAmount"`
}
