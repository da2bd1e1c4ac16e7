package clicker

import (
	"math"
	"time"
)

// Earnings 离线收益
type Earnings struct {
	Points    float64        `json:"points"`
	Materials map[string]int `json:"materials"`
	Minutes   int            `json:"minutes"`
}

// OfflineInput 离线收益计算参数
type OfflineInput struct {
	LogoutAt             *time.Time
	Now                  time.Time
	AutoClickLevel       int
	OfflineEarningsLevel int
	Tool                 string
}

// OfflineEarnings 计算自动点击器在离线期间的收益。
// 未购买自动点击器或离线收益升级、无登出时间、或有效离线时长不足
// MinOfflineDuration 时返回nil。离线时长按离线收益等级的上限截断。
func (c *Catalog) OfflineEarnings(in OfflineInput, r Roller) *Earnings {
	if in.AutoClickLevel < 1 || in.OfflineEarningsLevel < 1 || in.LogoutAt == nil {
		return nil
	}

	capDur, ok := c.OfflineCap(in.OfflineEarningsLevel)
	if !ok {
		return nil
	}
	rate, ok := c.AutoClickRate(in.AutoClickLevel)
	if !ok {
		return nil
	}

	capped := min(in.Now.Sub(*in.LogoutAt), capDur)
	if capped < MinOfflineDuration {
		return nil
	}

	clicks := int64(math.Floor(capped.Seconds() * rate))
	points := float64(clicks) * c.ValuePerClick[in.Tool]
	blockBreaks := int(clicks / ClicksPerBlock)

	return &Earnings{
		Points:    points,
		Materials: c.RollDrops(in.Tool, blockBreaks, r),
		Minutes:   int(capped / time.Minute),
	}
}
