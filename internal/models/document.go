package models

import "encoding/json"

// Collection names used by the workspace.
const (
	CollectionUsers        = "users"
	CollectionNotices      = "notices"
	CollectionEvents       = "events"
	CollectionTasks        = "tasks"
	CollectionQueries      = "queries"
	CollectionActivityLogs = "activity_logs"
	CollectionArchives     = "archives"
	CollectionCredentials  = "credentials"
)

// AuxiliaryCollections lists every collection backed up and wiped alongside
// the roster during a term rollover, in processing order.
var AuxiliaryCollections = []string{
	CollectionNotices,
	CollectionEvents,
	CollectionTasks,
	CollectionQueries,
	CollectionActivityLogs,
}

// Document is a semi-structured store record. The ID doubles as the write
// key and is never duplicated inside Data.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// MarshalJSON flattens the document into its native store shape: the data
// payload with the id injected as a plain field.
func (d Document) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(d.Data)+1)
	for k, v := range d.Data {
		flat[k] = v
	}
	flat["id"] = d.ID
	return json.Marshal(flat)
}

// UnmarshalJSON splits the synthetic id field back out of the payload.
func (d *Document) UnmarshalJSON(raw []byte) error {
	flat := map[string]interface{}{}
	if err := json.Unmarshal(raw, &flat); err != nil {
		return err
	}
	if id, ok := flat["id"].(string); ok {
		d.ID = id
	}
	delete(flat, "id")
	d.Data = flat
	return nil
}
