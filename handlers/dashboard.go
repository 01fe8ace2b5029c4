package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"aqi-monitor-api/aqi"
	"aqi-monitor-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TopRegionsLimit is how many regions /top-polluted returns.
const TopRegionsLimit = 5

type DashboardHandler struct {
	db    *gorm.DB
	cache *services.CacheService
}

func NewDashboardHandler(db *gorm.DB, cache *services.CacheService) *DashboardHandler {
	return &DashboardHandler{db: db, cache: cache}
}

// LatestReading is a sensor's most recent reading with its region.
type LatestReading struct {
	Region    string    `json:"region"`
	SensorID  uint      `json:"sensor_id"`
	AQI       float64   `json:"aqi"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	PM25      float64   `json:"PM2_5"`
	PM10      float64   `json:"PM10"`
	NO2       float64   `json:"NO2"`
	CO        float64   `json:"CO"`
	SO2       float64   `json:"SO2"`
	O3        float64   `json:"O3"`
	NH3       float64   `json:"NH3"`
}

// RegionAQI is a region's mean AQI across its sensors' latest readings.
type RegionAQI struct {
	Region   string       `json:"region"`
	AQI      float64      `json:"aqi"`
	Category aqi.Category `json:"category"`
	Sensors  int          `json:"sensors"`
}

type HistoryPoint struct {
	ID        uint      `json:"-"`
	SensorID  uint      `json:"sensor_id"`
	Timestamp time.Time `json:"timestamp"`
	AQI       float64   `json:"aqi"`
	PM25      float64   `json:"pm25"`
	PM10      float64   `json:"pm10"`
}

const latestQuery = `
	SELECT DISTINCT ON (sr.sensor_id)
		r.name AS region, s.id AS sensor_id, sr.predicted_aqi AS aqi, sr.category, sr.timestamp,
		sr.pm25, sr.pm10, sr.no2, sr.co, sr.so2, sr.o3, sr.nh3
	FROM sensor_readings sr
	JOIN sensors s ON s.id = sr.sensor_id
	JOIN regions r ON r.id = s.region_id
	ORDER BY sr.sensor_id, sr.timestamp DESC, sr.id DESC`

func (h *DashboardHandler) latest(ctx context.Context) ([]LatestReading, error) {
	var rows []LatestReading
	if err := h.db.WithContext(ctx).Raw(latestQuery).Scan(&rows).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].AQI > rows[j].AQI })
	return rows, nil
}

// GetLatest lists every sensor's latest reading, worst first.
func (h *DashboardHandler) GetLatest(c *gin.Context) {
	var cached []LatestReading
	if err := h.cache.Get(c.Request.Context(), services.KeyLatest, &cached); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, err := h.latest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	if rows == nil {
		rows = []LatestReading{}
	}

	go h.cache.Set(context.Background(), services.KeyLatest, rows, 5*time.Second)

	c.JSON(http.StatusOK, rows)
}

// GetTopPolluted ranks regions by the mean of their sensors' latest AQI.
func (h *DashboardHandler) GetTopPolluted(c *gin.Context) {
	var cached []RegionAQI
	if err := h.cache.Get(c.Request.Context(), services.KeyTopPolluted, &cached); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, err := h.latest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	ranked := RankRegions(rows, TopRegionsLimit)
	go h.cache.Set(context.Background(), services.KeyTopPolluted, ranked, 10*time.Second)

	c.JSON(http.StatusOK, ranked)
}

// RankRegions averages AQI per region, classifies each mean with the same
// bands as single readings and returns the worst limit regions.
func RankRegions(rows []LatestReading, limit int) []RegionAQI {
	type acc struct {
		sum float64
		n   int
	}
	byRegion := make(map[string]*acc)
	var order []string
	for _, r := range rows {
		a, ok := byRegion[r.Region]
		if !ok {
			a = &acc{}
			byRegion[r.Region] = a
			order = append(order, r.Region)
		}
		a.sum += r.AQI
		a.n++
	}

	out := make([]RegionAQI, 0, len(order))
	for _, name := range order {
		a := byRegion[name]
		mean := a.sum / float64(a.n)
		out = append(out, RegionAQI{
			Region:   name,
			AQI:      mean,
			Category: aqi.Classify(mean),
			Sensors:  a.n,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AQI != out[j].AQI {
			return out[i].AQI > out[j].AQI
		}
		return out[i].Region < out[j].Region
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GetHistory pages through a region's readings, newest first. The body is
// a bare array; the next page's cursor travels in NextCursorHeader.
func (h *DashboardHandler) GetHistory(c *gin.Context) {
	regionID, err := strconv.ParseUint(c.Param("region_id"), 10, 32)
	if err != nil || regionID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid region_id"})
		return
	}
	p := ParsePagination(c)

	query := h.db.WithContext(c.Request.Context()).
		Table("sensor_readings AS sr").
		Select("sr.id, sr.sensor_id, sr.timestamp, sr.predicted_aqi AS aqi, COALESCE(sr.pm25, 0) AS pm25, COALESCE(sr.pm10, 0) AS pm10").
		Joins("JOIN sensors s ON s.id = sr.sensor_id").
		Where("s.region_id = ?", regionID).
		Order("sr.timestamp DESC, sr.id DESC").
		Limit(p.FetchSize())
	if b := p.Before; b != nil {
		if b.ID > 0 {
			query = query.Where("(sr.timestamp, sr.id) < (?, ?)", b.At, b.ID)
		} else {
			query = query.Where("sr.timestamp < ?", b.At)
		}
	}

	var rows []HistoryPoint
	if err := query.Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	page, next := pageHistory(rows, p.Limit)
	if next != "" {
		c.Header(NextCursorHeader, next)
	}
	c.JSON(http.StatusOK, page)
}

func pageHistory(rows []HistoryPoint, limit int) ([]HistoryPoint, string) {
	return cursorPage(rows, limit, func(h HistoryPoint) Cursor {
		return Cursor{At: h.Timestamp, ID: h.ID}
	})
}
