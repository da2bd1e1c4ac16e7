package clicker

import "time"

// SmeltSummary 离线期间熔炼产出，产物名 -> 数量
type SmeltSummary map[string]int

// CatchUpSmelting 模拟离线期间的熔炼周期。
// 处理数量 = min(队列长度, 经过时间可完成的周期数, 煤量可支撑的周期数)，
// 按先进先出顺序处理。未知矿石直接出队且不消耗煤；矿石不足时停止补算，
// 该条目保留在队首。输入状态不会被修改。
func (c *Catalog) CatchUpSmelting(s State, elapsed time.Duration) (State, SmeltSummary) {
	out := s.Clone()
	summary := SmeltSummary{}

	period, ok := SmeltPeriod(s.FurnaceLevel)
	if !ok || len(out.SmeltingQueue) == 0 || out.CoalReserve < CoalPerTick {
		return out, summary
	}
	if elapsed <= 0 {
		return out, summary
	}

	ticksByTime := int(elapsed / period)
	ticksByCoal := int(out.CoalReserve / CoalPerTick)
	toProcess := min(len(out.SmeltingQueue), ticksByTime, ticksByCoal)

	processed := 0
	for processed < toProcess {
		ore := out.SmeltingQueue[processed]
		recipe, known := c.Recipes[ore]
		if !known {
			processed++
			continue
		}
		if out.Materials[ore] < recipe.InputAmount || out.CoalReserve < CoalPerTick {
			break
		}

		out.Materials[ore] -= recipe.InputAmount
		out.Materials[recipe.Output] += recipe.Amount
		out.CoalReserve -= CoalPerTick
		summary[recipe.Output] += recipe.Amount
		processed++
	}

	out.SmeltingQueue = out.SmeltingQueue[processed:]
	return out, summary
}
