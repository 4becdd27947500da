// Package sierraecg decodes Sierra ECG / Philips ECG resting-ECG files: an
// XML container carrying twelve lead signals, most commonly compressed with
// the proprietary XLI scheme implemented by the xli subpackage.
package sierraecg

// EcgFile is the decoded result of a Sierra ECG / Philips ECG file.
type EcgFile struct {
	// DocType is one of "SierraECG" or "PhilipsECG".
	DocType string
	// DocVer is the document version, e.g. "1.04.01".
	DocVer string
	// Leads holds one EcgLead per stored channel, in declaration order.
	Leads []EcgLead
	// Repbeats holds one EcgRepbeat per lead, aligned to Leads by label.
	// Empty unless WithRepbeats was given and the file carries them.
	Repbeats []EcgRepbeat
}

// EcgLead is one channel of the rhythm strip.
type EcgLead struct {
	Label        string
	SamplingFreq int
	Duration     int
	Samples      []int16
}

// EcgRepbeat is one representative (averaged) beat for a single lead.
type EcgRepbeat struct {
	Label        string
	SamplingFreq int
	Duration     int
	Resolution   int
	Method       string
	Samples      []uint16
}
