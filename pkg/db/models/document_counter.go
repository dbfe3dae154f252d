package models

// DocumentCounter serializes document numbering per series, branch, and
// calendar day. Incrementing the row inside the creating transaction is what
// keeps concurrent writers from picking the same sequence.
type DocumentCounter struct {
	Series     string `gorm:"column:series;primaryKey"`
	BranchCode string `gorm:"column:branch_code;primaryKey"`
	Day        string `gorm:"column:day;primaryKey"`
	LastSeq    int    `gorm:"column:last_seq;not null;default:0"`
}
