package domain

import "fmt"

// DataQualityError marks a record whose fields cannot support a given
// check. The record is excluded from that check only, never from the batch.
type DataQualityError struct {
	ShipmentID string
	Field      string
	Reason     string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality: shipment %s field %s: %s", e.ShipmentID, e.Field, e.Reason)
}
