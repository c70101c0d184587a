package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"survey_app_go/models"
)

func TestLogAuditEvent(t *testing.T) {
	db := setupTestDB(t)

	ctx := AuditContext{
		UserID:    "user-1",
		UserName:  "Admin",
		UserRole:  models.RoleAdmin,
		IPAddress: "127.0.0.1",
	}
	LogAuditEvent(db, ctx, models.AuditActionCreate, "SurveyTemplate", "tmpl-1", "Standard Survey",
		"Template created", nil, map[string]string{"name": "Standard Survey"})

	// Writes are asynchronous
	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&models.AuditLog{}).Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)

	var entry models.AuditLog
	assert.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "Admin", entry.UserName)
	assert.Equal(t, models.AuditActionCreate, entry.Action)
	assert.Equal(t, "SurveyTemplate", entry.ResourceType)
	assert.Contains(t, entry.NewValues, "Standard Survey")
	assert.Empty(t, entry.OldValues)
}

func TestGetAuditLogsFiltersAndPagination(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 3; i++ {
		entry := models.AuditLog{
			UserName:     "Admin",
			UserRole:     models.RoleAdmin,
			ResourceType: "SurveyInstance",
			ResourceID:   "inst-1",
			ResourceName: "Q1 Survey",
			Action:       models.AuditActionUpdate,
		}
		assert.NoError(t, db.Create(&entry).Error)
	}
	other := models.AuditLog{
		UserName:     "Viewer",
		UserRole:     models.RoleViewer,
		ResourceType: "SurveyResponse",
		ResourceID:   "resp-1",
		Action:       models.AuditActionExport,
	}
	assert.NoError(t, db.Create(&other).Error)

	logs, total, err := GetAuditLogs(db, AuditLogFilters{ResourceType: "SurveyInstance"}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, logs, 3)

	logs, total, err = GetAuditLogs(db, AuditLogFilters{Action: string(models.AuditActionExport)}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "SurveyResponse", logs[0].ResourceType)

	// Page size limits results but not the total
	logs, total, err = GetAuditLogs(db, AuditLogFilters{}, 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, logs, 2)

	logs, _, err = GetAuditLogs(db, AuditLogFilters{SearchQuery: "Q1"}, 1, 10)
	assert.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestGetResourceAuditHistory(t *testing.T) {
	db := setupTestDB(t)

	entry := models.AuditLog{
		UserName:     "Admin",
		UserRole:     models.RoleAdmin,
		ResourceType: "SurveyTemplate",
		ResourceID:   "tmpl-9",
		Action:       models.AuditActionDelete,
	}
	assert.NoError(t, db.Create(&entry).Error)

	logs, err := GetResourceAuditHistory(db, "SurveyTemplate", "tmpl-9")
	assert.NoError(t, err)
	assert.Len(t, logs, 1)

	logs, err = GetResourceAuditHistory(db, "SurveyTemplate", "other")
	assert.NoError(t, err)
	assert.Empty(t, logs)
}
