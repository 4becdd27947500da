package sierraecg

import (
	"encoding/binary"
)

// readRepbeats decodes the optional <repbeats> element into one EcgRepbeat
// per <repbeat>, verifying that repbeat order matches the lead label order
// established for the rhythm strip, per §4.5.
func readRepbeats(root *node, leadLabels []string) ([]EcgRepbeat, error) {
	repbeatsNode := findNode(root, "repbeats")
	if repbeatsNode == nil {
		return nil, nil
	}

	encoding := getAttrDefault(repbeatsNode, "dataencoding", "")
	if encoding != "Base64" {
		return nil, errUnsupportedEncoding(encoding)
	}

	samplingFreq, err := getIntAttr(repbeatsNode, "samplespersec")
	if err != nil {
		return nil, err
	}
	resolution, err := getIntAttr(repbeatsNode, "resolution")
	if err != nil {
		return nil, err
	}
	method := getAttrDefault(repbeatsNode, "repbeatmethod", "")

	var out []EcgRepbeat
	for i := range repbeatsNode.Nodes {
		rb := &repbeatsNode.Nodes[i]
		if rb.XMLName.Local != "repbeat" {
			continue
		}

		label := getAttrDefault(rb, "leadname", "")
		if i >= len(leadLabels) || label != leadLabels[i] {
			want := ""
			if i < len(leadLabels) {
				want = leadLabels[i]
			}
			return nil, errOrderingMismatch(want, label)
		}

		waveform := findNode(rb, "waveform")
		if waveform == nil {
			return nil, errMissingElement("waveform")
		}
		payload, err := decodeBase64(getText(waveform), 0)
		if err != nil {
			return nil, err
		}
		samples := make([]uint16, len(payload)/2)
		for j := range samples {
			samples[j] = binary.LittleEndian.Uint16(payload[2*j:])
		}

		duration, err := getIntAttrOr(rb, "durationperchannel", 0)
		if err != nil {
			return nil, err
		}

		out = append(out, EcgRepbeat{
			Label:        label,
			SamplingFreq: samplingFreq,
			Duration:     duration,
			Resolution:   resolution,
			Method:       method,
			Samples:      samples,
		})
	}

	return out, nil
}

// getIntAttrOr parses attr as an integer if present, returning def when the
// attribute is absent.
func getIntAttrOr(n *node, attr string, def int) (int, error) {
	v := getAttrDefault(n, attr, "")
	if v == "" {
		return def, nil
	}
	return getIntAttr(n, attr)
}
