// Package types defines the data structures shared between the monitor,
// storage backends, and controllers.
package types

import (
	"time"
)

// Reading is a single dose-accumulator tick: the raw UV sample plus every
// quantity derived from it. Rows are stored as history only; the running
// dose lives in the tracker and resets at process start.
type Reading struct {
	Timestamp       time.Time `gorm:"column:time" json:"ts"`
	DeviceName      string    `gorm:"column:devicename" json:"device"`
	SessionID       string    `gorm:"column:sessionid" json:"session_id"`
	SkinType        int       `gorm:"column:skintype" json:"skin_type"`
	SPF             int       `gorm:"column:spf" json:"spf"`
	UVIndex         float64   `gorm:"column:uvindex" json:"uv_index"`
	DoseIncrement   float64   `gorm:"column:doseincrement" json:"dose_increment"`
	CumulativeDose  float64   `gorm:"column:cumulativedose" json:"cumulative_dose"`
	BurnPercent     float64   `gorm:"column:burnpercent" json:"burn_percent"`
	TimeToBurnMin   float64   `gorm:"column:timetoburnmin" json:"time_to_burn_min"`
	SmoothedToBurn  float64   `gorm:"column:smoothedtoburnmin" json:"smoothed_to_burn_min"`
	OverThreshold   bool      `gorm:"column:overthreshold" json:"over_threshold"`
	SensorSuspect   bool      `gorm:"column:sensorsuspect" json:"sensor_suspect"`
}

// TableName sets the database table name for readings
func (Reading) TableName() string {
	return "dose_readings"
}
