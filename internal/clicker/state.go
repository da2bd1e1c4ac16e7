package clicker

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// State 玩家游戏状态快照
type State struct {
	Points               float64
	Tool                 string
	Inventory            []string
	Materials            map[string]int
	AutoClickLevel       int
	OfflineEarningsLevel int
	FurnaceLevel         int
	CoalReserve          float64
	SmeltingQueue        []string
	LastLogoutAt         *time.Time
	UpdatedAt            time.Time
}

// Clone 深拷贝
func (s State) Clone() State {
	out := s
	out.Inventory = append([]string(nil), s.Inventory...)
	out.SmeltingQueue = append([]string(nil), s.SmeltingQueue...)
	out.Materials = make(map[string]int, len(s.Materials))
	for k, v := range s.Materials {
		out.Materials[k] = v
	}
	if s.LastLogoutAt != nil {
		t := *s.LastLogoutAt
		out.LastLogoutAt = &t
	}
	return out
}

// ValidateState 校验客户端提交的快照。
// 等级不能超出数据表，煤量和材料不能为负，当前工具必须在背包中，
// 熔炼队列只能包含有配方的矿石。
func (c *Catalog) ValidateState(s State) error {
	if s.Points < 0 || math.IsNaN(s.Points) || math.IsInf(s.Points, 0) {
		return fmt.Errorf("点数无效: %v", s.Points)
	}
	if s.CoalReserve < 0 || math.IsNaN(s.CoalReserve) || math.IsInf(s.CoalReserve, 0) {
		return fmt.Errorf("煤储量无效: %v", s.CoalReserve)
	}
	if s.FurnaceLevel < 0 || s.FurnaceLevel > MaxFurnaceLevel {
		return fmt.Errorf("熔炉等级超出范围: %d", s.FurnaceLevel)
	}
	if s.AutoClickLevel < 0 || s.AutoClickLevel > len(c.AutoClickTiers) {
		return fmt.Errorf("自动点击等级超出范围: %d", s.AutoClickLevel)
	}
	if s.OfflineEarningsLevel < 0 || s.OfflineEarningsLevel > len(c.OfflineTiers) {
		return fmt.Errorf("离线收益等级超出范围: %d", s.OfflineEarningsLevel)
	}
	if !c.IsTool(s.Tool) {
		return fmt.Errorf("未知工具: %s", s.Tool)
	}
	if !slices.Contains(s.Inventory, s.Tool) {
		return fmt.Errorf("当前工具不在背包中: %s", s.Tool)
	}
	for _, t := range s.Inventory {
		if !c.IsTool(t) {
			return fmt.Errorf("背包中有未知工具: %s", t)
		}
	}
	for name, n := range s.Materials {
		if n < 0 {
			return fmt.Errorf("材料数量为负: %s", name)
		}
	}
	for _, ore := range s.SmeltingQueue {
		if !c.IsSmeltable(ore) {
			return fmt.Errorf("熔炼队列中有无法熔炼的物品: %s", ore)
		}
	}
	return nil
}
