// Package matcher 提供顾问评分与推荐引擎
package matcher

import (
	"math"

	"github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/model"
)

// Weights 八维评分权重
// 默认值合计 1.0 以便于解读总分；引擎本身容忍不归一的权重集
type Weights struct {
	EMR          float64 `json:"emr"`
	Module       float64 `json:"module"`
	Proficiency  float64 `json:"proficiency"`
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Shift        float64 `json:"shift"`
	Colleague    float64 `json:"colleague"`
	Location     float64 `json:"location"`
}

// DefaultWeights 返回默认权重集（合计 1.0）
func DefaultWeights() Weights {
	return Weights{
		EMR:          0.25,
		Module:       0.20,
		Proficiency:  0.15,
		Availability: 0.15,
		Performance:  0.10,
		Shift:        0.08,
		Colleague:    0.05,
		Location:     0.02,
	}
}

// Validate 校验权重集
// 拒绝 NaN、负值和全零集合，避免静默产生 NaN 总分
func (w Weights) Validate() error {
	values := map[string]float64{
		"emr":          w.EMR,
		"module":       w.Module,
		"proficiency":  w.Proficiency,
		"availability": w.Availability,
		"performance":  w.Performance,
		"shift":        w.Shift,
		"colleague":    w.Colleague,
		"location":     w.Location,
	}

	var sum float64
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.InvalidWeights("权重 " + name + " 不是有效数值")
		}
		if v < 0 {
			return errors.InvalidWeights("权重 " + name + " 为负值")
		}
		sum += v
	}
	if sum == 0 {
		return errors.InvalidWeights("权重全部为零")
	}
	return nil
}

// ToMap 转换为审计日志用的 JSON 映射
func (w Weights) ToMap() model.JSONMap {
	return model.JSONMap{
		"emr":          w.EMR,
		"module":       w.Module,
		"proficiency":  w.Proficiency,
		"availability": w.Availability,
		"performance":  w.Performance,
		"shift":        w.Shift,
		"colleague":    w.Colleague,
		"location":     w.Location,
	}
}
