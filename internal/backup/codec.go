package backup

import (
	"encoding/base64"
	"encoding/json"

	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/evaluation"
	"vulcanhr/internal/domain/user"
)

// Snapshot is the portable form of all three collections. A nil slice
// means the collection was absent from the decoded blob and must be left
// alone on import.
type Snapshot struct {
	Employees   []employee.Employee         `json:"employees"`
	Evaluations []evaluation.FullEvaluation `json:"evaluations"`
	Users       []user.User                 `json:"users"`
}

// Encode produces a single printable string for manual device-to-device
// transfer: standard base64 over UTF-8 JSON, safe to paste into a textbox.
func Encode(snapshot Snapshot) (string, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// Decode is the exact inverse of Encode. A blob that cannot be decoded or
// parsed yields an error and no partial snapshot.
func Decode(code string) (Snapshot, error) {
	payload, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return Snapshot{}, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}
