package sierraecg

import (
	"encoding/base64"
	"io"
	"os"

	"github.com/mewkiz/pkg/errutil"
)

// recognizedDocTypes and recognizedDocVers list the (doc_type, doc_ver)
// pairs this package knows how to decode. Any other pair fails with
// UnsupportedFile.
var recognizedDocTypes = map[string]bool{"SierraECG": true, "PhilipsECG": true}
var recognizedDocVers = map[string]bool{"1.03": true, "1.04": true, "1.04.01": true, "1.04.02": true}

// ReadFile opens path and decodes it as a Sierra ECG / Philips ECG file.
func ReadFile(path string, opts ...Option) (*EcgFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errutil.Err(err)
	}
	defer f.Close()
	return Decode(f, opts...)
}

// Decode reads a Sierra ECG / Philips ECG XML document from r and returns
// the decoded file.
func Decode(r io.Reader, opts ...Option) (*EcgFile, error) {
	cfg := newConfig(opts)

	root, err := parseDocument(r)
	if err != nil {
		return nil, err
	}
	ecgRoot, err := getNode(root, "restingecgdata")
	if err != nil {
		// the root element itself may already be <restingecgdata>.
		if root.XMLName.Local == "restingecgdata" {
			ecgRoot = root
		} else {
			return nil, err
		}
	}

	docType, docVer, err := readVersion(ecgRoot)
	if err != nil {
		return nil, err
	}

	leads, err := readLeads(ecgRoot, cfg)
	if err != nil {
		return nil, err
	}

	file := &EcgFile{DocType: docType, DocVer: docVer, Leads: leads}

	if cfg.includeRepbeats {
		labels := make([]string, len(leads))
		for i, l := range leads {
			labels[i] = l.Label
		}
		repbeats, err := readRepbeats(ecgRoot, labels)
		if err != nil {
			return nil, err
		}
		file.Repbeats = repbeats
	}

	return file, nil
}

// readVersion validates <documentinfo>/<documenttype|documentversion>
// against the recognized set, per §6.
func readVersion(root *node) (docType, docVer string, err error) {
	docInfo, err := getNode(root, "documentinfo")
	if err != nil {
		return "", "", err
	}
	typeNode, err := getNode(docInfo, "documenttype")
	if err != nil {
		return "", "", err
	}
	verNode, err := getNode(docInfo, "documentversion")
	if err != nil {
		return "", "", err
	}
	docType = getText(typeNode)
	docVer = getText(verNode)

	if !recognizedDocTypes[docType] || !recognizedDocVers[docVer] {
		return "", "", errUnsupportedFile(docType, docVer)
	}
	return docType, docVer, nil
}

// readLeads locates <dataacquisition>/<signalcharacteristics> and
// <parsedwaveforms>, decodes the waveform payload, and synthesizes the
// derived limb leads, per §4.4 and §4.5.
func readLeads(root *node, cfg *config) ([]EcgLead, error) {
	acquisition, err := getNode(root, "dataacquisition")
	if err != nil {
		return nil, err
	}
	sigChar, err := getNode(acquisition, "signalcharacteristics")
	if err != nil {
		return nil, err
	}
	parsedWaveforms, err := getNode(root, "parsedwaveforms")
	if err != nil {
		return nil, err
	}

	samplingRateNode, err := getNode(sigChar, "samplingrate")
	if err != nil {
		return nil, err
	}
	samplingFreq, err := getIntText(samplingRateNode)
	if err != nil {
		return nil, err
	}
	duration, err := getIntAttr(parsedWaveforms, "durationperchannel")
	if err != nil {
		return nil, err
	}
	sampleCount := duration * samplingFreq / 1000

	labels, err := resolveLabels(sigChar, parsedWaveforms)
	if err != nil {
		return nil, err
	}

	encoding := getAttrDefault(parsedWaveforms, "dataencoding", "")
	if encoding != "Base64" {
		return nil, errUnsupportedEncoding(encoding)
	}
	payload, err := decodeBase64(getText(parsedWaveforms), cfg.maxPayloadSize)
	if err != nil {
		return nil, err
	}

	method := inferCompression(parsedWaveforms)
	samples, err := decodeWaveformData(payload, method, len(labels), sampleCount)
	if err != nil {
		return nil, err
	}

	acqTypeNode, err := getNode(sigChar, "acquisitiontype")
	if err != nil {
		return nil, err
	}
	acqType := getText(acqTypeNode)
	if (acqType == "STD-12" || acqType == "10-WIRE") && len(samples) >= 6 {
		synthesizeDerivedLeads(samples)
	}

	leads := make([]EcgLead, len(labels))
	for i, label := range labels {
		var s []int16
		if i < len(samples) {
			s = samples[i]
		}
		leads[i] = EcgLead{Label: label, SamplingFreq: samplingFreq, Duration: duration, Samples: s}
	}
	return leads, nil
}

// decodeBase64 decodes whitespace-wrapped base64 text, rejecting payloads
// larger than maxSize when maxSize is positive (§5's configurable maximum
// payload size).
func decodeBase64(text string, maxSize int) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(stripWhitespace(text))
	if err != nil {
		return nil, errDecode("malformed base64 waveform payload: " + err.Error())
	}
	if maxSize > 0 && len(data) > maxSize {
		return nil, errDecode("waveform payload exceeds configured maximum size")
	}
	return data, nil
}
