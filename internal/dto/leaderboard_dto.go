package dto

// LeaderboardEntry is one ranked user within a class.
type LeaderboardEntry struct {
	Rank             int     `json:"rank"`
	UserID           uint    `json:"user_id"`
	Username         string  `json:"username"`
	PhotoURL         *string `json:"photo_url"`
	CompletedTasks   int     `json:"completed_tasks"`
	TotalTimeSeconds int64   `json:"total_time_seconds"`
}

// LeaderboardResponse ranks a class by completed tasks then total time.
type LeaderboardResponse struct {
	ClassID uint               `json:"class_id"`
	Entries []LeaderboardEntry `json:"entries"`
}
