package clicker

import (
	"math/rand"
	"sync"
)

// Roller 随机数来源，返回[0,1)区间的均匀分布值
type Roller interface {
	Float64() float64
}

type defaultRoller struct{}

func (defaultRoller) Float64() float64 { return rand.Float64() }

// DefaultRoller 全局随机数来源（并发安全）
var DefaultRoller Roller = defaultRoller{}

// SequenceRoller 按给定序列循环返回的随机数来源，用于复现掉落结果
type SequenceRoller struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequenceRoller 创建序列随机数来源
func NewSequenceRoller(values ...float64) *SequenceRoller {
	return &SequenceRoller{values: values}
}

// Float64 返回下一个值，序列为空时返回0
func (s *SequenceRoller) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// RollDrop 按工具掉落表抽取一种材料。
// 按表顺序累加概率，第一个累计值>=抽样值的条目胜出；都不满足时无掉落。
func (c *Catalog) RollDrop(tool string, r Roller) (string, bool) {
	drops := c.MaterialDrops[tool]
	if len(drops) == 0 {
		return "", false
	}

	draw := r.Float64()
	cumulative := 0.0
	for _, d := range drops {
		cumulative += d.Chance
		if draw <= cumulative {
			return d.Name, true
		}
	}
	return "", false
}

// RollDrops 连续抽取n次并汇总
func (c *Catalog) RollDrops(tool string, n int, r Roller) map[string]int {
	materials := make(map[string]int)
	for i := 0; i < n; i++ {
		if name, ok := c.RollDrop(tool, r); ok {
			materials[name]++
		}
	}
	return materials
}
