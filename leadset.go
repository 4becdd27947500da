package sierraecg

import (
	"encoding/binary"
	"fmt"
	"strings"

	ibits "github.com/sierraecg/sierraecg/internal/bits"
	"github.com/sierraecg/sierraecg/xli"
)

// resolveLabels determines the ordered lead labels for the file: the
// explicit @leadlabels attribute if present, otherwise a convention derived
// from @acquisitiontype, matching §4.5.
func resolveLabels(sigChar, parsedWaveforms *node) ([]string, error) {
	leadLabels := getAttrDefault(parsedWaveforms, "leadlabels", "")
	if leadLabels != "" {
		count, err := getIntAttr(parsedWaveforms, "numberofleads")
		if err != nil {
			return nil, err
		}
		toks := strings.Split(leadLabels, " ")
		if count > len(toks) {
			count = len(toks)
		}
		return toks[:count], nil
	}

	channelsNode, err := getNode(sigChar, "numberchannelsallocated")
	if err != nil {
		return nil, err
	}
	channels, err := getIntText(channelsNode)
	if err != nil {
		return nil, err
	}
	acqNode, err := getNode(sigChar, "acquisitiontype")
	if err != nil {
		return nil, err
	}
	acqType := getText(acqNode)

	labels := make([]string, channels)
	for i := 0; i < channels; i++ {
		labels[i] = leadName(acqType, i+1)
	}
	return labels, nil
}

// leadName maps a 1-based channel index to its conventional label for
// standard-12 and 10-wire acquisitions; every other acquisition type or
// out-of-range index yields a generic "Channel N" label.
func leadName(acqType string, index int) string {
	if acqType == "STD-12" || acqType == "10-WIRE" {
		switch index {
		case 1:
			return "I"
		case 2:
			return "II"
		case 3:
			return "III"
		case 4:
			return "aVR"
		case 5:
			return "aVL"
		case 6:
			return "aVF"
		}
		if index > 6 && index <= 12 {
			return fmt.Sprintf("V%d", index-6)
		}
	}
	return fmt.Sprintf("Channel %d", index)
}

// inferCompression resolves the compression method, falling back from
// @compressmethod to @compression to "Uncompressed", the same chain
// read_file's infer_compression applies.
func inferCompression(parsedWaveforms *node) string {
	if v := getAttrDefault(parsedWaveforms, "compressmethod", ""); v != "" {
		return v
	}
	return getAttrDefault(parsedWaveforms, "compression", "Uncompressed")
}

// decodeWaveformData splits or decompresses the base64-decoded waveform
// payload into one int16 sample slice per lead.
func decodeWaveformData(payload []byte, method string, leadCount, sampleCount int) ([][]int16, error) {
	if method == "Uncompressed" {
		return splitLeads(payload, leadCount, sampleCount), nil
	}
	if method != "XLI" {
		return nil, errUnsupportedCompression(method)
	}
	leads, err := xli.Decode(payload)
	if err != nil {
		return nil, errDecode(err.Error())
	}
	return leads, nil
}

// splitLeads interprets data as a flat little-endian int16 array and slices
// it into leadCount consecutive runs of sampleCount samples each.
func splitLeads(data []byte, leadCount, sampleCount int) [][]int16 {
	all := make([]int16, len(data)/2)
	for i := range all {
		all[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}

	leads := make([][]int16, 0, leadCount)
	offset := 0
	for offset < leadCount*sampleCount {
		end := offset + sampleCount
		if end > len(all) {
			end = len(all)
		}
		leads = append(leads, all[offset:end])
		offset += sampleCount
	}
	return leads
}

// synthesizeDerivedLeads replaces the stored III/aVR/aVL/aVF residual
// chunks in place with their reconstructed values per §4.4. III is updated
// first since aVL and aVF consume its post-update value.
func synthesizeDerivedLeads(leads [][]int16) {
	i, ii, iii := leads[0], leads[1], leads[2]
	avr, avl, avf := leads[3], leads[4], leads[5]

	for k := range iii {
		iii[k] = ibits.Int16(int32(ii[k]) - int32(i[k]) - int32(iii[k]))
	}
	for k := range avr {
		sum := ibits.Int16(int32(i[k]) + int32(ii[k]))
		avr[k] = ibits.Int16(-int32(avr[k]) - int32(floorDiv2(sum)))
	}
	for k := range avl {
		diff := ibits.Int16(int32(i[k]) - int32(iii[k]))
		avl[k] = ibits.Int16(int32(floorDiv2(diff)) - int32(avl[k]))
	}
	for k := range avf {
		sum := ibits.Int16(int32(ii[k]) + int32(iii[k]))
		avf[k] = ibits.Int16(int32(floorDiv2(sum)) - int32(avf[k]))
	}
}

// floorDiv2 divides x by two rounding toward negative infinity, matching
// the reference implementation's use of true floor division rather than
// Go's truncating integer division.
func floorDiv2(x int16) int16 {
	if x >= 0 || x%2 == 0 {
		return x / 2
	}
	return x/2 - 1
}
