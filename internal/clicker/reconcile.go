package clicker

import "time"

// Result 登录补算结果
type Result struct {
	State          State
	OfflineSmelted SmeltSummary
	OfflineEarned  *Earnings

	// Smelted 是否执行过熔炼补算
	Smelted bool
}

// Changed 是否需要持久化
func (r *Result) Changed() bool {
	return r.Smelted || r.OfflineEarned != nil
}

// ClearLogout 是否应清空登出时间（离线收益已发放）
func (r *Result) ClearLogout() bool {
	return r.OfflineEarned != nil
}

// Reconcile 对快照执行熔炼补算和离线收益计算并合并结果。
// 熔炼补算以登出时间为起点，没有登出时间时退回到更新时间；
// 离线收益只认登出时间。
func (c *Catalog) Reconcile(s State, now time.Time, r Roller) Result {
	since := s.UpdatedAt
	if s.LastLogoutAt != nil {
		since = *s.LastLogoutAt
	}

	next, summary := c.CatchUpSmelting(s, now.Sub(since))
	result := Result{
		State:          next,
		OfflineSmelted: summary,
		Smelted:        len(summary) > 0 || len(next.SmeltingQueue) != len(s.SmeltingQueue),
	}

	earned := c.OfflineEarnings(OfflineInput{
		LogoutAt:             s.LastLogoutAt,
		Now:                  now,
		AutoClickLevel:       s.AutoClickLevel,
		OfflineEarningsLevel: s.OfflineEarningsLevel,
		Tool:                 s.Tool,
	}, r)
	if earned != nil {
		result.State.Points += earned.Points
		for name, n := range earned.Materials {
			result.State.Materials[name] += n
		}
		result.OfflineEarned = earned
	}

	return result
}
