package predict

import (
	"fmt"
	"time"
)

// Compile-time check to ensure ModelMeta implements Persistable interface
var _ Persistable = (*ModelMeta)(nil)

// ModelMeta is a small key/value table for model artifacts: schema version,
// serialized regressor coefficients, scaler parameters
type ModelMeta struct {
	Key       string    `json:"key" column:"key" dbtype:"TEXT NOT NULL" primary:"true"`
	Value     string    `json:"value" column:"value" dbtype:"TEXT"`
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// GetPrimaryKey returns the primary key as a map
func (mm *ModelMeta) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"key": mm.Key,
	}
}

// SetPrimaryKey sets the primary key from a map
func (mm *ModelMeta) SetPrimaryKey(pk map[string]interface{}) error {
	if key, ok := pk["key"]; ok {
		if keyStr, ok := key.(string); ok {
			mm.Key = keyStr
			return nil
		}
		return fmt.Errorf("primary key 'key' must be a string")
	}
	return fmt.Errorf("primary key 'key' not found")
}

// GetTableName returns the table name for model metadata
func (mm *ModelMeta) GetTableName() string {
	return "model_meta"
}

// BeforeSave is called before saving the metadata entry
func (mm *ModelMeta) BeforeSave() error {
	now := time.Now()
	if mm.CreatedAt.IsZero() {
		mm.CreatedAt = now
	}
	mm.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the metadata entry
func (mm *ModelMeta) AfterSave() error {
	return nil
}

// BeforeDelete is called before deleting the metadata entry
func (mm *ModelMeta) BeforeDelete() error {
	return nil
}

// AfterDelete is called after deleting the metadata entry
func (mm *ModelMeta) AfterDelete() error {
	return nil
}

// PutMeta stores a metadata value under a key
func PutMeta(key, value string) error {
	return Save(&ModelMeta{Key: key, Value: value})
}

// GetMeta retrieves a metadata value by key
func GetMeta(key string) (string, error) {
	mm := &ModelMeta{}
	if err := FindByPrimaryKey(mm, map[string]any{"key": key}); err != nil {
		return "", err
	}
	return mm.Value, nil
}
