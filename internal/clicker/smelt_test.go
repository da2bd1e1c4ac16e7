package clicker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCatchUpSmelting(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("两个铜矿在2级熔炉中完成熔炼", func(t *testing.T) {
		s := State{
			FurnaceLevel:  2,
			SmeltingQueue: []string{"copper_ore", "copper_ore"},
			Materials:     map[string]int{"copper_ore": 2},
			CoalReserve:   1.0,
		}

		out, summary := catalog.CatchUpSmelting(s, 6000*time.Millisecond)

		assert.Equal(t, 0, out.Materials["copper_ore"])
		assert.Equal(t, 2, out.Materials["copper_ingot"])
		assert.Equal(t, 0.5, out.CoalReserve)
		assert.Empty(t, out.SmeltingQueue)
		assert.Equal(t, SmeltSummary{"copper_ingot": 2}, summary)

		// 输入不被修改
		assert.Equal(t, 2, s.Materials["copper_ore"])
		assert.Len(t, s.SmeltingQueue, 2)
	})

	t.Run("熔炉未建造时不处理", func(t *testing.T) {
		s := State{
			SmeltingQueue: []string{"iron_ore"},
			Materials:     map[string]int{"iron_ore": 1},
			CoalReserve:   2,
		}
		out, summary := catalog.CatchUpSmelting(s, time.Hour)
		assert.Empty(t, summary)
		assert.Equal(t, []string{"iron_ore"}, out.SmeltingQueue)
		assert.Equal(t, 2.0, out.CoalReserve)
	})

	t.Run("煤不足一个周期时不处理", func(t *testing.T) {
		s := State{
			FurnaceLevel:  1,
			SmeltingQueue: []string{"iron_ore"},
			Materials:     map[string]int{"iron_ore": 1},
			CoalReserve:   0.2,
		}
		out, summary := catalog.CatchUpSmelting(s, time.Hour)
		assert.Empty(t, summary)
		assert.Equal(t, 0.2, out.CoalReserve)
		assert.Len(t, out.SmeltingQueue, 1)
	})

	t.Run("处理数量受煤量限制且煤不为负", func(t *testing.T) {
		s := State{
			FurnaceLevel:  8,
			SmeltingQueue: []string{"iron_ore", "iron_ore", "iron_ore", "iron_ore"},
			Materials:     map[string]int{"iron_ore": 4},
			CoalReserve:   0.6,
		}
		out, summary := catalog.CatchUpSmelting(s, time.Hour)
		assert.Equal(t, SmeltSummary{"iron_ingot": 2}, summary)
		assert.InDelta(t, 0.1, out.CoalReserve, 1e-9)
		assert.GreaterOrEqual(t, out.CoalReserve, 0.0)
		assert.Equal(t, []string{"iron_ore", "iron_ore"}, out.SmeltingQueue)
	})

	t.Run("处理数量受时间限制", func(t *testing.T) {
		s := State{
			FurnaceLevel:  1,
			SmeltingQueue: []string{"gold_ore", "gold_ore", "gold_ore"},
			Materials:     map[string]int{"gold_ore": 3},
			CoalReserve:   10,
		}
		out, summary := catalog.CatchUpSmelting(s, 9999*time.Millisecond)
		assert.Equal(t, SmeltSummary{"gold_ingot": 1}, summary)
		assert.Equal(t, 9.75, out.CoalReserve)
		assert.Len(t, out.SmeltingQueue, 2)
	})

	t.Run("未知矿石出队且不消耗煤", func(t *testing.T) {
		s := State{
			FurnaceLevel:  1,
			SmeltingQueue: []string{"mystery_ore", "copper_ore"},
			Materials:     map[string]int{"copper_ore": 1},
			CoalReserve:   1,
		}
		out, summary := catalog.CatchUpSmelting(s, 10*time.Second)
		assert.Equal(t, SmeltSummary{"copper_ingot": 1}, summary)
		assert.Equal(t, 0.75, out.CoalReserve)
		assert.Empty(t, out.SmeltingQueue)
	})

	t.Run("矿石不足时停止补算并保留队首", func(t *testing.T) {
		s := State{
			FurnaceLevel:  4,
			SmeltingQueue: []string{"netherite_ore", "copper_ore"},
			Materials:     map[string]int{"netherite_ore": 3, "copper_ore": 1},
			CoalReserve:   5,
		}
		out, summary := catalog.CatchUpSmelting(s, time.Minute)
		assert.Empty(t, summary)
		assert.Equal(t, 3, out.Materials["netherite_ore"])
		assert.Equal(t, 5.0, out.CoalReserve)
		assert.Equal(t, []string{"netherite_ore", "copper_ore"}, out.SmeltingQueue)
	})

	t.Run("下界合金矿消耗4个输入", func(t *testing.T) {
		s := State{
			FurnaceLevel:  1,
			SmeltingQueue: []string{"netherite_ore"},
			Materials:     map[string]int{"netherite_ore": 5},
			CoalReserve:   0.25,
		}
		out, summary := catalog.CatchUpSmelting(s, 5*time.Second)
		assert.Equal(t, SmeltSummary{"netherite_ingot": 1}, summary)
		assert.Equal(t, 1, out.Materials["netherite_ore"])
		assert.Equal(t, 0.0, out.CoalReserve)
	})

	t.Run("立即重复执行不再处理", func(t *testing.T) {
		s := State{
			FurnaceLevel:  2,
			SmeltingQueue: []string{"copper_ore", "copper_ore", "copper_ore"},
			Materials:     map[string]int{"copper_ore": 3},
			CoalReserve:   1,
		}
		first, _ := catalog.CatchUpSmelting(s, 5*time.Second)
		second, summary := catalog.CatchUpSmelting(first, 0)
		assert.Empty(t, summary)
		assert.Equal(t, first.SmeltingQueue, second.SmeltingQueue)
		assert.Equal(t, first.CoalReserve, second.CoalReserve)
		assert.Equal(t, first.Materials, second.Materials)
	})
}

func TestCatchUpSmelting_ProcessedCount(t *testing.T) {
	catalog := DefaultCatalog()

	for level := 1; level <= MaxFurnaceLevel; level++ {
		for _, coal := range []float64{0.25, 0.5, 1.3, 3} {
			for _, elapsed := range []time.Duration{0, time.Second, 7 * time.Second, time.Minute} {
				queue := []string{"copper_ore", "copper_ore", "copper_ore", "copper_ore", "copper_ore"}
				s := State{
					FurnaceLevel:  level,
					SmeltingQueue: queue,
					Materials:     map[string]int{"copper_ore": len(queue)},
					CoalReserve:   coal,
				}

				period, _ := SmeltPeriod(level)
				want := min(len(queue), int(elapsed/period), int(coal/CoalPerTick))

				out, summary := catalog.CatchUpSmelting(s, elapsed)
				assert.Equal(t, want, summary["copper_ingot"], "level=%d coal=%v elapsed=%v", level, coal, elapsed)
				assert.Len(t, out.SmeltingQueue, len(queue)-want)
				assert.GreaterOrEqual(t, out.CoalReserve, 0.0)
			}
		}
	}
}
