package utils

import (
	"time"
)

var (
	// IndiaLocation 印度标准时间 (UTC+5:30)，头条接口的目标市场
	IndiaLocation *time.Location
)

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// 加载失败时使用固定偏移量
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// NowInIndia 获取印度时区的当前时间
func NowInIndia() time.Time {
	return time.Now().In(IndiaLocation)
}

// LoadLocationOr 解析时区名，失败时返回 fallback
func LoadLocationOr(name string, fallback *time.Location) *time.Location {
	if name == "" {
		return fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}
