package voice

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/pitabwire/frame/data"
)

// StringListJSON stores a string slice as a JSON column.
type StringListJSON []string

func (l StringListJSON) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringListJSON) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringListJSON: %T", value)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Voice is a directory record for a cloned voice. VoiceID is the provider
// handle; deactivation flips IsActive rather than deleting the row so the
// provider-side resource remains traceable.
type Voice struct {
	data.BaseModel

	OwnerID       string         `gorm:"type:varchar(50);index"`
	VoiceID       string         `gorm:"type:varchar(128);index"`
	Name          string         `gorm:"type:varchar(255)"`
	RecordingURLs StringListJSON `gorm:"type:jsonb"`
	IsActive      bool           `gorm:"default:true"`
}

func (v *Voice) TableName() string {
	return "voices"
}

// SavedPhrase is a reusable utterance tied to a cloned voice.
type SavedPhrase struct {
	data.BaseModel

	OwnerID  string `gorm:"type:varchar(50);index"`
	VoiceID  string `gorm:"type:varchar(128);index"`
	Text     string `gorm:"type:text"`
	Category string `gorm:"type:varchar(100);default:'general'"`
	AudioURL string `gorm:"type:text"`
}

func (p *SavedPhrase) TableName() string {
	return "saved_phrases"
}
