// Package worldtime は固定4都市の現在時刻の提供を行う。
package worldtime

import (
	"fmt"
	"time"
)

// CityTime は1都市分の現在時刻を表す。
// ISOはUTCオフセット付きのRFC 3339形式。
type CityTime struct {
	Label string
	TZ    string
	ISO   string
}

// zone は解決済みタイムゾーンを保持する。
type zone struct {
	label string
	tz    string
	loc   *time.Location
}

// cities は対象都市の固定リスト。この順序でレスポンスを返す。
var cities = []struct {
	label string
	tz    string
}{
	{"New York", "America/New_York"},
	{"Beijing", "Asia/Shanghai"},
	{"Sydney", "Australia/Sydney"},
	{"Delhi", "Asia/Kolkata"},
}

// Service は都市別現在時刻を返すステートレスなサービス。
type Service struct {
	zones []zone
	now   func() time.Time
}

// NewService はServiceを生成する。
// タイムゾーンの解決に失敗した場合はエラーを返す。これは起動時の構成不良であり、
// 実行時のエラーパスは存在しない。
func NewService() (*Service, error) {
	zones := make([]zone, 0, len(cities))
	for _, c := range cities {
		loc, err := time.LoadLocation(c.tz)
		if err != nil {
			return nil, fmt.Errorf("failed to load timezone %s: %w", c.tz, err)
		}
		zones = append(zones, zone{label: c.label, tz: c.tz, loc: loc})
	}

	return &Service{
		zones: zones,
		now:   time.Now,
	}, nil
}

// Now は現在時刻を固定リスト順で4都市分返す。
func (s *Service) Now() []CityTime {
	t := s.now()
	results := make([]CityTime, len(s.zones))
	for i, z := range s.zones {
		results[i] = CityTime{
			Label: z.label,
			TZ:    z.tz,
			ISO:   t.In(z.loc).Format(time.RFC3339),
		}
	}
	return results
}
