package models

import "fmt"

var InvalidBalanceErr = fmt.Errorf("initial balance must be positive")
var InvalidLotStepErr = fmt.Errorf("lot step must be positive")
var InvalidPointValueErr = fmt.Errorf("point value must be positive")
var InvalidLotRangeErr = fmt.Errorf("min lot must be positive and not exceed max lot")
var InvalidDigitsErr = fmt.Errorf("digits must not be negative")
var InvalidSpreadErr = fmt.Errorf("spread must not be negative")
var EmptyBarSeriesErr = fmt.Errorf("bar series is empty")
var NotEnoughBarsErr = fmt.Errorf("not enough bars for requested operation")
var InvalidWindowCountErr = fmt.Errorf("window count must be positive")
var InvalidInSampleRatioErr = fmt.Errorf("in-sample ratio must be between 0 and 1")
