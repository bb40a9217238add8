package constraint

import (
	"testing"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

func TestAverageRating(t *testing.T) {
	if AverageRating(nil) != nil {
		t.Error("无评价应返回 nil")
	}

	r1, r2 := 4.0, 5.0
	avg := AverageRating([]model.Rating{{OverallRating: &r1}, {OverallRating: nil}, {OverallRating: &r2}})
	if avg == nil {
		t.Fatal("有非空评价时不应返回 nil")
	}
	// 空值评价不参与平均
	if *avg != 4.5 {
		t.Errorf("平均值应为 4.5，实际 %v", *avg)
	}

	onlyNil := AverageRating([]model.Rating{{OverallRating: nil}})
	if onlyNil != nil {
		t.Error("全部为空值时应返回 nil")
	}
}

func TestCheckShiftPreference(t *testing.T) {
	cases := []struct {
		pref     model.ShiftType
		required model.ShiftType
		want     ShiftMatch
	}{
		{model.ShiftDay, model.ShiftDay, ShiftMatchYes},
		{model.ShiftDay, model.ShiftNight, ShiftMatchNo},
		{"", model.ShiftDay, ShiftNoPreference},
		{model.ShiftNone, model.ShiftDay, ShiftNoPreference},
		{model.ShiftDay, "", ShiftNoPreference},
		{model.ShiftDay, model.ShiftNone, ShiftNoPreference},
	}

	for _, c := range cases {
		if got := CheckShiftPreference(c.pref, c.required); got != c.want {
			t.Errorf("CheckShiftPreference(%q, %q) = %q，期望 %q", c.pref, c.required, got, c.want)
		}
	}
}

func TestCheckColleaguePreference(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	match := CheckColleaguePreference([]uuid.UUID{a, b}, []uuid.UUID{b, c})
	if !match.HasPreferredColleague {
		t.Error("应匹配到偏好同事")
	}
	if len(match.MatchedColleagues) != 1 || match.MatchedColleagues[0] != b {
		t.Errorf("应只匹配到 %s，实际 %v", b, match.MatchedColleagues)
	}

	none := CheckColleaguePreference([]uuid.UUID{a}, []uuid.UUID{c})
	if none.HasPreferredColleague {
		t.Error("无交集时不应匹配")
	}

	empty := CheckColleaguePreference(nil, []uuid.UUID{c})
	if empty.HasPreferredColleague {
		t.Error("无偏好列表时不应匹配")
	}
}

func TestCheckLocationProximity(t *testing.T) {
	cases := []struct {
		consultant string
		hospital   string
		want       Proximity
	}{
		{"CA", "CA", ProximitySameState},
		{"ca", "CA", ProximitySameState},
		{" CA ", "CA", ProximitySameState},
		{"CA", "TX", ProximityDifferentState},
		{"", "CA", ProximityUnknown},
		{"CA", "", ProximityUnknown},
		{"  ", "CA", ProximityUnknown},
	}

	for _, c := range cases {
		if got := CheckLocationProximity(c.consultant, c.hospital); got != c.want {
			t.Errorf("CheckLocationProximity(%q, %q) = %q，期望 %q", c.consultant, c.hospital, got, c.want)
		}
	}
}

func TestCheckDateAvailability(t *testing.T) {
	c := &model.Consultant{
		Availability: []model.AvailabilityBlock{
			{StartDate: "2026-09-01", EndDate: "2026-09-03", Type: model.AvailabilitySick},
			{StartDate: "2026-09-10", EndDate: "2026-09-10", Type: model.AvailabilityTraining},
		},
	}

	// 病假阻断
	result := CheckDateAvailability(c, []string{"2026-09-02"})
	if result.Available {
		t.Error("病假期间应不可用")
	}

	// 区间边界为闭区间
	result = CheckDateAvailability(c, []string{"2026-09-03"})
	if result.Available {
		t.Error("区间末日应不可用")
	}

	// 培训只降级
	result = CheckDateAvailability(c, []string{"2026-09-10"})
	if !result.Available {
		t.Error("培训期间应保持可用")
	}
	if !result.PartialAvailability {
		t.Error("培训期间应标记部分可用")
	}

	// 无区块默认可用
	result = CheckDateAvailability(&model.Consultant{}, []string{"2026-09-02"})
	if !result.Available || len(result.Conflicts) != 0 {
		t.Error("无区块时应完全可用")
	}
}
