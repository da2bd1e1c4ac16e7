package clicker

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 固定参数
const (
	// CoalPerTick 每次熔炼消耗的煤量
	CoalPerTick = 0.25

	// BaseSmeltPeriod 1级熔炉的熔炼周期，周期 = BaseSmeltPeriod / 熔炉等级
	BaseSmeltPeriod = 5000 * time.Millisecond

	// MinOfflineDuration 低于该时长的离线不计收益
	MinOfflineDuration = 10 * time.Second

	// ClicksPerBlock 每破坏一个方块需要的点击数（与前端破坏动画阶段数一致）
	ClicksPerBlock = 10

	// MaxFurnaceLevel 熔炉最高等级
	MaxFurnaceLevel = 8

	// ToolHand 初始工具
	ToolHand = "hand"
)

// Recipe 熔炼配方
type Recipe struct {
	Output      string `yaml:"output" json:"output"`
	Amount      int    `yaml:"amount" json:"amount"`
	InputAmount int    `yaml:"input_amount" json:"input_amount"`
}

// Drop 掉落表条目，Chance 为该条目自身概率，按表顺序累加
type Drop struct {
	Name   string  `yaml:"name" json:"name"`
	Chance float64 `yaml:"chance" json:"chance"`
}

// AutoClickTier 自动点击器等级
type AutoClickTier struct {
	Rate float64        `yaml:"rate" json:"rate"` // 每秒点击数
	Cost map[string]int `yaml:"cost" json:"cost"`
}

// OfflineTier 离线收益等级
type OfflineTier struct {
	CapMinutes int            `yaml:"cap" json:"cap"`
	Cost       map[string]int `yaml:"cost" json:"cost"`
}

// FurnaceCost 熔炉升级花费
type FurnaceCost struct {
	CobbleStone int `json:"cobble_stone"`
	Coal        int `json:"coal"`
}

// Catalog 游戏固定数据表，加载后只读
type Catalog struct {
	Recipes           map[string]Recipe         `yaml:"recipes" json:"recipes"`
	AutoClickTiers    []AutoClickTier           `yaml:"auto_click_tiers" json:"auto_click_tiers"`
	OfflineTiers      []OfflineTier             `yaml:"offline_tiers" json:"offline_tiers"`
	ValuePerClick     map[string]float64        `yaml:"value_per_click" json:"value_per_click"`
	MaterialDrops     map[string][]Drop         `yaml:"material_drops" json:"material_drops"`
	ToolOrder         []string                  `yaml:"tool_order" json:"tool_order"`
	ToolCosts         map[string]int            `yaml:"tool_costs" json:"tool_costs"`
	ToolMaterialCosts map[string]map[string]int `yaml:"tool_material_costs" json:"tool_material_costs"`
	MaterialNames     map[string]string         `yaml:"material_names" json:"material_names"`
}

// DefaultCatalog 返回内置数据表（每次调用返回新副本）
func DefaultCatalog() *Catalog {
	return &Catalog{
		Recipes: map[string]Recipe{
			"copper_ore":    {Output: "copper_ingot", Amount: 1, InputAmount: 1},
			"iron_ore":      {Output: "iron_ingot", Amount: 1, InputAmount: 1},
			"gold_ore":      {Output: "gold_ingot", Amount: 1, InputAmount: 1},
			"netherite_ore": {Output: "netherite_ingot", Amount: 1, InputAmount: 4},
		},
		AutoClickTiers: []AutoClickTier{
			{Rate: 0.5, Cost: map[string]int{"cobble_stone": 200, "copper_ingot": 1}},
			{Rate: 1.0, Cost: map[string]int{"cobble_stone": 500, "copper_ingot": 3}},
			{Rate: 2.0, Cost: map[string]int{"cobble_stone": 1000, "iron_ingot": 10}},
			{Rate: 3.5, Cost: map[string]int{"cobble_stone": 2000, "gold_ingot": 5}},
			{Rate: 5.0, Cost: map[string]int{"cobble_stone": 5000, "diamond": 2}},
			{Rate: 7.5, Cost: map[string]int{"cobble_stone": 10000, "netherite_ingot": 1}},
		},
		OfflineTiers: []OfflineTier{
			{CapMinutes: 30, Cost: map[string]int{"cobble_stone": 500, "copper_ingot": 5}},
			{CapMinutes: 60, Cost: map[string]int{"cobble_stone": 1000, "copper_ingot": 15, "iron_ingot": 5}},
			{CapMinutes: 90, Cost: map[string]int{"cobble_stone": 2000, "iron_ingot": 20, "gold_ingot": 5}},
			{CapMinutes: 120, Cost: map[string]int{"cobble_stone": 3000, "iron_ingot": 40, "gold_ingot": 20}},
			{CapMinutes: 180, Cost: map[string]int{"cobble_stone": 5000, "diamond": 5}},
			{CapMinutes: 240, Cost: map[string]int{"cobble_stone": 7500, "diamond": 10, "netherite_ingot": 1}},
			{CapMinutes: 360, Cost: map[string]int{"cobble_stone": 10000, "diamond": 15, "netherite_ingot": 2}},
			{CapMinutes: 480, Cost: map[string]int{"cobble_stone": 15000, "diamond": 25, "netherite_ingot": 4}},
			{CapMinutes: 600, Cost: map[string]int{"cobble_stone": 20000, "diamond": 35, "netherite_ingot": 6}},
			{CapMinutes: 720, Cost: map[string]int{"cobble_stone": 30000, "diamond": 50, "netherite_ingot": 10}},
		},
		ValuePerClick: map[string]float64{
			"hand":      0.5,
			"wooden":    1,
			"stone":     2,
			"copper":    4,
			"iron":      8,
			"gold":      16,
			"diamond":   32,
			"netherite": 64,
		},
		MaterialDrops: map[string][]Drop{
			"wooden": {
				{Name: "cobble_stone", Chance: 0.75},
				{Name: "coal", Chance: 0.2},
				{Name: "copper_ore", Chance: 0.05},
			},
			"stone": {
				{Name: "cobble_stone", Chance: 0.74},
				{Name: "coal", Chance: 0.2},
				{Name: "copper_ore", Chance: 0.06},
			},
			"copper": {
				{Name: "cobble_stone", Chance: 0.715},
				{Name: "coal", Chance: 0.2},
				{Name: "copper_ore", Chance: 0.07},
				{Name: "iron_ore", Chance: 0.015},
			},
			"iron": {
				{Name: "cobble_stone", Chance: 0.685},
				{Name: "coal", Chance: 0.2},
				{Name: "copper_ore", Chance: 0.08},
				{Name: "iron_ore", Chance: 0.02},
				{Name: "gold_ore", Chance: 0.015},
			},
			"gold": {
				{Name: "cobble_stone", Chance: 0.635},
				{Name: "coal", Chance: 0.2},
				{Name: "copper_ore", Chance: 0.09},
				{Name: "iron_ore", Chance: 0.03},
				{Name: "gold_ore", Chance: 0.025},
				{Name: "diamond", Chance: 0.005},
			},
			"diamond": {
				{Name: "cobble_stone", Chance: 0.58},
				{Name: "coal", Chance: 0.2},
				{Name: "copper_ore", Chance: 0.1},
				{Name: "iron_ore", Chance: 0.035},
				{Name: "gold_ore", Chance: 0.035},
				{Name: "diamond", Chance: 0.005},
				{Name: "netherite_ore", Chance: 0.001},
			},
			"netherite": {
				{Name: "cobble_stone", Chance: 0.5825},
				{Name: "coal", Chance: 0.2},
				{Name: "copper_ore", Chance: 0.11},
				{Name: "iron_ore", Chance: 0.035},
				{Name: "gold_ore", Chance: 0.035},
				{Name: "diamond", Chance: 0.0075},
				{Name: "netherite_ore", Chance: 0.001},
			},
		},
		ToolOrder: []string{"wooden", "stone", "copper", "iron", "gold", "diamond", "netherite"},
		ToolCosts: map[string]int{
			"wooden":    100,
			"stone":     500,
			"copper":    2500,
			"iron":      10000,
			"gold":      50000,
			"diamond":   200000,
			"netherite": 1000000,
		},
		ToolMaterialCosts: map[string]map[string]int{
			"stone":  {"cobble_stone": 100},
			"copper": {"cobble_stone": 200, "copper_ingot": 25},
			"iron":   {"cobble_stone": 300, "copper_ingot": 40, "iron_ingot": 25},
			"gold":   {"cobble_stone": 500, "copper_ingot": 75, "iron_ingot": 50, "gold_ingot": 20},
			"diamond": {
				"cobble_stone": 700, "copper_ingot": 100, "iron_ingot": 75,
				"gold_ingot": 50, "diamond": 10,
			},
			"netherite": {
				"cobble_stone": 1000, "copper_ingot": 150, "iron_ingot": 100,
				"gold_ingot": 75, "diamond": 25, "netherite_ingot": 5,
			},
		},
		MaterialNames: map[string]string{
			"cobble_stone":    "Cobblestone",
			"copper_ore":      "Copper Ore",
			"iron_ore":        "Iron Ore",
			"gold_ore":        "Gold Ore",
			"diamond":         "Diamond",
			"netherite_ore":   "Netherite Ore",
			"coal":            "Coal",
			"copper_ingot":    "Copper Ingot",
			"iron_ingot":      "Iron Ingot",
			"gold_ingot":      "Gold Ingot",
			"netherite_ingot": "Netherite Ingot",
		},
	}
}

// LoadCatalog 从yaml文件加载数据表，文件中未出现的表沿用内置值
func LoadCatalog(path string) (*Catalog, error) {
	catalog := DefaultCatalog()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据表文件失败: %w", err)
	}

	var override Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("解析数据表文件失败: %w", err)
	}
	catalog.merge(&override)

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// merge 用非空表覆盖
func (c *Catalog) merge(o *Catalog) {
	if len(o.Recipes) > 0 {
		c.Recipes = o.Recipes
	}
	if len(o.AutoClickTiers) > 0 {
		c.AutoClickTiers = o.AutoClickTiers
	}
	if len(o.OfflineTiers) > 0 {
		c.OfflineTiers = o.OfflineTiers
	}
	if len(o.ValuePerClick) > 0 {
		c.ValuePerClick = o.ValuePerClick
	}
	if len(o.MaterialDrops) > 0 {
		c.MaterialDrops = o.MaterialDrops
	}
	if len(o.ToolOrder) > 0 {
		c.ToolOrder = o.ToolOrder
	}
	if len(o.ToolCosts) > 0 {
		c.ToolCosts = o.ToolCosts
	}
	if len(o.ToolMaterialCosts) > 0 {
		c.ToolMaterialCosts = o.ToolMaterialCosts
	}
	if len(o.MaterialNames) > 0 {
		c.MaterialNames = o.MaterialNames
	}
}

// Validate 校验数据表
func (c *Catalog) Validate() error {
	for ore, r := range c.Recipes {
		if r.Output == "" || r.Amount <= 0 || r.InputAmount <= 0 {
			return fmt.Errorf("配方无效: %s", ore)
		}
	}
	prevRate := 0.0
	for i, tier := range c.AutoClickTiers {
		if tier.Rate <= prevRate {
			return fmt.Errorf("自动点击等级%d速率必须递增", i+1)
		}
		prevRate = tier.Rate
	}
	prevCap := 0
	for i, tier := range c.OfflineTiers {
		if tier.CapMinutes <= prevCap {
			return fmt.Errorf("离线收益等级%d上限必须递增", i+1)
		}
		prevCap = tier.CapMinutes
	}
	for tool, drops := range c.MaterialDrops {
		total := 0.0
		for _, d := range drops {
			if d.Chance < 0 {
				return fmt.Errorf("掉落概率不能为负: %s/%s", tool, d.Name)
			}
			total += d.Chance
		}
		// 允许浮点累加误差
		if total > 1+1e-9 {
			return fmt.Errorf("掉落概率之和超过1: %s", tool)
		}
	}
	return nil
}

// AutoClickRate 返回自动点击等级对应的速率，0级或表为空时返回false；
// 超出表长度时取最高级
func (c *Catalog) AutoClickRate(level int) (float64, bool) {
	if level < 1 || len(c.AutoClickTiers) == 0 {
		return 0, false
	}
	if level > len(c.AutoClickTiers) {
		level = len(c.AutoClickTiers)
	}
	return c.AutoClickTiers[level-1].Rate, true
}

// OfflineCap 返回离线收益等级对应的时长上限
func (c *Catalog) OfflineCap(level int) (time.Duration, bool) {
	if level < 1 || len(c.OfflineTiers) == 0 {
		return 0, false
	}
	if level > len(c.OfflineTiers) {
		level = len(c.OfflineTiers)
	}
	return time.Duration(c.OfflineTiers[level-1].CapMinutes) * time.Minute, true
}

// FurnaceUpgradeCost 返回从当前等级升一级的花费，满级返回false
func FurnaceUpgradeCost(level int) (FurnaceCost, bool) {
	if level < 0 || level >= MaxFurnaceLevel {
		return FurnaceCost{}, false
	}
	return FurnaceCost{
		CobbleStone: 20 + level*10,
		Coal:        1 + level/2,
	}, true
}

// IsTool 判断是否为已知工具
func (c *Catalog) IsTool(name string) bool {
	if name == ToolHand {
		return true
	}
	for _, t := range c.ToolOrder {
		if t == name {
			return true
		}
	}
	return false
}

// IsSmeltable 判断矿石是否有熔炼配方
func (c *Catalog) IsSmeltable(ore string) bool {
	_, ok := c.Recipes[ore]
	return ok
}

// SmeltPeriod 返回熔炉等级对应的熔炼周期，0级返回false
func SmeltPeriod(furnaceLevel int) (time.Duration, bool) {
	if furnaceLevel <= 0 {
		return 0, false
	}
	return BaseSmeltPeriod / time.Duration(furnaceLevel), true
}
