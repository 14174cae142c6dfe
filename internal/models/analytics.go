package models

// Analytics summarises one user's journal.
type Analytics struct {
	TotalEntries         int            `json:"totalEntries"`
	EntriesThisMonth     int            `json:"entriesThisMonth"`
	MoodDistribution     map[string]int `json:"moodDistribution"`
	WritingStreak        int            `json:"writingStreak"`
	AverageWordsPerEntry int            `json:"averageWordsPerEntry"`
}
