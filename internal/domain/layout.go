package domain

import "path/filepath"

// Fixed asset names inside the model directory.
const (
	ModelDirName          = "mobilenet_v3_minimalistic"
	TFLiteFilename        = "v3-large-minimalistic_224_1.0_float.tflite"
	LabelsFilename        = "imagenet_1000_labels.txt"
	DLCFilename           = "v3-large-minimalistic_224_1.0_float.dlc"
	QuantizedDLCFilename  = "v3-large-minimalistic_224_1.0_quantized.dlc"
	RawListFilename       = "raw_list.txt"
	TargetRawListFilename = "target_raw_list.txt"
	CreateRawsScript      = "create_mobilenetv3_mini_raws.py"
	CreateFileListScript  = "create_file_list.py"

	// sampleImageModel provides the jpg inputs used for calibration.
	sampleImageModel = "alexnet"
)

// Layout holds every path derived from the SDK root.
type Layout struct {
	SDKRoot string
}

// NewLayout returns the layout rooted at sdkRoot.
func NewLayout(sdkRoot string) Layout {
	return Layout{SDKRoot: sdkRoot}
}

func (l Layout) ModelDir() string {
	return filepath.Join(l.SDKRoot, "models", ModelDirName)
}

func (l Layout) TFLiteDir() string {
	return filepath.Join(l.ModelDir(), "tensorflowlite")
}

func (l Layout) DataDir() string {
	return filepath.Join(l.ModelDir(), "data")
}

func (l Layout) CroppedDir() string {
	return filepath.Join(l.DataDir(), "cropped")
}

func (l Layout) ScriptsDir() string {
	return filepath.Join(l.ModelDir(), "scripts")
}

func (l Layout) DLCDir() string {
	return filepath.Join(l.ModelDir(), "dlc")
}

// SampleImagesGlob matches the jpg files copied into the data directory.
func (l Layout) SampleImagesGlob() string {
	return filepath.Join(l.SDKRoot, "models", sampleImageModel, "data", "*.jpg")
}

func (l Layout) TFLiteModel() string {
	return filepath.Join(l.TFLiteDir(), TFLiteFilename)
}

func (l Layout) LabelsSource() string {
	return filepath.Join(l.TFLiteDir(), LabelsFilename)
}

func (l Layout) DLCModel() string {
	return filepath.Join(l.DLCDir(), DLCFilename)
}

func (l Layout) QuantizedDLCModel() string {
	return filepath.Join(l.DLCDir(), QuantizedDLCFilename)
}

// RawList is the calibration manifest consumed by the quantizer.
func (l Layout) RawList() string {
	return filepath.Join(l.CroppedDir(), RawListFilename)
}

// TargetRawList is the manifest with paths relative to the device.
func (l Layout) TargetRawList() string {
	return filepath.Join(l.DataDir(), TargetRawListFilename)
}

func (l Layout) Script(name string) string {
	return filepath.Join(l.ScriptsDir(), name)
}
