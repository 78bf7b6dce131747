package card

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SlpAus/tarot-reading-backend/internal/platform/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRawVariantResolvePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		variant rawVariant
		want    string
	}{
		{
			name:    "meaning_short优先",
			variant: rawVariant{MeaningShort: "短释义", Meaning: "通用释义"},
			want:    "短释义",
		},
		{
			name:    "缺失时回退到meaning",
			variant: rawVariant{Meaning: "通用释义"},
			want:    "通用释义",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.variant.resolve().Meaning)
		})
	}
}

func TestRawCardValidate(t *testing.T) {
	valid := rawCard{
		ID:       "major_00",
		Name:     "愚者",
		NameEN:   "The Fool",
		Arcana:   "major",
		Upright:  rawVariant{Keywords: []string{"开始"}, Meaning: "新的旅程"},
		Reversed: rawVariant{Keywords: []string{"鲁莽"}, Meaning: "轻率的决定"},
	}
	require.NoError(t, valid.validate())

	noReversed := valid
	noReversed.Reversed = rawVariant{}
	assert.Error(t, noReversed.validate(), "缺少逆位含义的卡牌必须被拒绝")

	noKeywords := valid
	noKeywords.Upright.Keywords = nil
	assert.Error(t, noKeywords.validate(), "缺少关键词的卡牌必须被拒绝")

	noID := valid
	noID.ID = ""
	assert.Error(t, noID.validate())
}

func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.DB = db
	require.NoError(t, db.AutoMigrate(&Card{}))
}

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportCatalogAndRepository(t *testing.T) {
	setupTestDB(t)

	path := writeCatalogFile(t, `[
		{
			"id": "major_00", "name": "愚者", "name_en": "The Fool", "arcana": "major",
			"image": "major_00.png",
			"upright": {"keywords": ["开始", "自由"], "meaning_short": "新的旅程", "meaning_long": "放下包袱，踏上未知的道路。"},
			"reversed": {"keywords": ["鲁莽"], "meaning": "轻率的决定"}
		},
		{
			"id": "major_01", "name": "魔术师", "name_en": "The Magician", "arcana": "major",
			"image": "major_01.png",
			"upright": {"keywords": ["创造"], "meaning": "掌握资源"},
			"reversed": {"keywords": ["欺瞒"], "meaning": "才能的滥用"}
		}
	]`)

	require.NoError(t, ImportCatalog(path))
	require.NoError(t, InitializeRepository())

	assert.Equal(t, 2, GetCardCount())

	info, ok := GetCardInfoByID("major_00")
	require.True(t, ok)
	assert.Equal(t, "愚者", info.Name)
	assert.Equal(t, "新的旅程", info.Upright.Meaning, "meaning_short应优先于meaning")
	assert.Equal(t, "放下包袱，踏上未知的道路。", info.Upright.MeaningLong)
	assert.Equal(t, []string{"开始", "自由"}, info.Upright.Keywords)
	assert.Equal(t, "轻率的决定", info.Reversed.Meaning)

	// 再次导入应跳过，不产生重复数据
	require.NoError(t, ImportCatalog(path))
	var count int64
	require.NoError(t, database.DB.Model(&Card{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestImportCatalogRejectsInvalidData(t *testing.T) {
	setupTestDB(t)

	path := writeCatalogFile(t, `[
		{
			"id": "major_00", "name": "愚者", "arcana": "major",
			"upright": {"keywords": ["开始"], "meaning": "新的旅程"},
			"reversed": {"keywords": []}
		}
	]`)
	assert.Error(t, ImportCatalog(path))

	dup := writeCatalogFile(t, `[
		{"id": "x", "name": "A", "upright": {"keywords": ["k"], "meaning": "m"}, "reversed": {"keywords": ["k"], "meaning": "m"}},
		{"id": "x", "name": "B", "upright": {"keywords": ["k"], "meaning": "m"}, "reversed": {"keywords": ["k"], "meaning": "m"}}
	]`)
	assert.Error(t, ImportCatalog(dup))
}

func TestMeaningVariantText(t *testing.T) {
	v := MeaningVariant{Meaning: "短", MeaningLong: "长"}
	assert.Equal(t, "短", v.Text(false))
	assert.Equal(t, "长", v.Text(true))

	noLong := MeaningVariant{Meaning: "短"}
	assert.Equal(t, "短", noLong.Text(true), "长释义缺失时回退到核心释义")
}
