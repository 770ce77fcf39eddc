package models

import "time"

type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// TypicalPrice is the pivot price used by band and money-flow indicators.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3.0
}

func (b Bar) Body() float64 {
	if b.Close >= b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

func (b Bar) IsBullish() bool {
	return b.Close > b.Open
}

func (b Bar) IsBearish() bool {
	return b.Open > b.Close
}
