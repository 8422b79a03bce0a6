package settings

import (
	"fmt"
	"os"
)

// CentralFileOpenOption selects how workshared central files are opened.
type CentralFileOpenOption int

const (
	Detach CentralFileOpenOption = iota
	CreateNewLocal
)

// CentralFileOpenOptionNames are the serialized names of CentralFileOpenOption.
var CentralFileOpenOptionNames = EnumNames[CentralFileOpenOption]{
	Detach:         "Detach",
	CreateNewLocal: "CreateNewLocal",
}

// WorksetConfigurationOption selects which worksets are opened.
type WorksetConfigurationOption int

const (
	CloseAllWorksets WorksetConfigurationOption = iota
	OpenAllWorksets
	OpenLastViewed
)

// WorksetConfigurationOptionNames are the serialized names of WorksetConfigurationOption.
var WorksetConfigurationOptionNames = EnumNames[WorksetConfigurationOption]{
	CloseAllWorksets: "CloseAllWorksets",
	OpenAllWorksets:  "OpenAllWorksets",
	OpenLastViewed:   "OpenLastViewed",
}

// ProcessingOption selects between processing a list of files and running
// the task script once.
type ProcessingOption int

const (
	BatchFileProcessing ProcessingOption = iota
	SingleTaskProcessing
)

// ProcessingOptionNames are the serialized names of ProcessingOption.
var ProcessingOptionNames = EnumNames[ProcessingOption]{
	BatchFileProcessing:  "BatchRevitFileProcessing",
	SingleTaskProcessing: "SingleRevitTaskProcessing",
}

// VersionSelectionOption selects which host version opens each file.
type VersionSelectionOption int

const (
	UseFileVersionIfAvailable VersionSelectionOption = iota
	UseSpecificVersion
)

// VersionSelectionOptionNames are the serialized names of VersionSelectionOption.
var VersionSelectionOptionNames = EnumNames[VersionSelectionOption]{
	UseFileVersionIfAvailable: "UseFileRevitVersionIfAvailable",
	UseSpecificVersion:        "UseSpecificRevitVersion",
}

// BatchSettings is the settings document shared by the orchestrator and the
// worker.
type BatchSettings struct {
	*Aggregate

	TaskScriptFilePath              *Setting[string]
	ShowMessageBoxOnTaskScriptError *Setting[bool]
	ProcessingTimeOutInMinutes      *Setting[int]
	ShowProcessErrorMessages        *Setting[bool]

	FileListFilePath *Setting[string]
	FilePaths        *Setting[[]string]
	DataExportFolder *Setting[string]

	PreProcessingScriptFilePath  *Setting[string]
	ExecutePreProcessingScript   *Setting[bool]
	PostProcessingScriptFilePath *Setting[string]
	ExecutePostProcessingScript  *Setting[bool]

	CentralFileOpenOption      *Setting[CentralFileOpenOption]
	DeleteLocalAfter           *Setting[bool]
	DiscardWorksetsOnDetach    *Setting[bool]
	WorksetConfigurationOption *Setting[WorksetConfigurationOption]
	AuditOnOpening             *Setting[bool]

	ProcessingOption         *Setting[ProcessingOption]
	SingleTaskVersion        *Setting[string]
	VersionSelectionOption   *Setting[VersionSelectionOption]
	FallBackToMinimumVersion *Setting[bool]
	BatchTaskVersion         *Setting[string]
	TaskData                 *Setting[string]
}

// NewBatchSettings returns a BatchSettings holding default values and bound
// to DefaultSettingsFilePath.
func NewBatchSettings() *BatchSettings {
	s := &BatchSettings{
		Aggregate: NewAggregate("BatchSettings", DefaultSettingsFilePath()),

		TaskScriptFilePath:              NewString("taskScriptFilePath", ""),
		ShowMessageBoxOnTaskScriptError: NewBool("showMessageBoxOnTaskScriptError", false),
		ProcessingTimeOutInMinutes:      NewInt("processingTimeOutInMinutes", 0),
		ShowProcessErrorMessages:        NewBool("showRevitProcessErrorMessages", false),

		FileListFilePath: NewString("revitFileListFilePath", ""),
		FilePaths:        NewList("revitFilePaths", StringCodec()),
		DataExportFolder: NewString("dataExportFolderPath", ""),

		PreProcessingScriptFilePath:  NewString("preProcessingScriptFilePath", ""),
		ExecutePreProcessingScript:   NewBool("executePreProcessingScript", false),
		PostProcessingScriptFilePath: NewString("postProcessingScriptFilePath", ""),
		ExecutePostProcessingScript:  NewBool("executePostProcessingScript", false),

		CentralFileOpenOption:      NewEnum("centralFileOpenOption", Detach, CentralFileOpenOptionNames),
		DeleteLocalAfter:           NewBool("deleteLocalAfter", true),
		DiscardWorksetsOnDetach:    NewBool("discardWorksetsOnDetach", false),
		WorksetConfigurationOption: NewEnum("worksetConfigurationOption", CloseAllWorksets, WorksetConfigurationOptionNames),
		AuditOnOpening:             NewBool("auditOnOpening", false),

		ProcessingOption:         NewEnum("revitProcessingOption", BatchFileProcessing, ProcessingOptionNames),
		SingleTaskVersion:        NewString("singleRevitTaskRevitVersion", ""),
		VersionSelectionOption:   NewEnum("revitFileProcessingOption", UseFileVersionIfAvailable, VersionSelectionOptionNames),
		FallBackToMinimumVersion: NewBool("ifNotAvailableUseMinimumAvailableRevitVersion", false),
		BatchTaskVersion:         NewString("batchRevitTaskRevitVersion", ""),
		TaskData:                 NewString("taskData", ""),
	}

	s.MustRegister(
		s.TaskScriptFilePath,
		s.ShowMessageBoxOnTaskScriptError,
		s.ProcessingTimeOutInMinutes,
		s.ShowProcessErrorMessages,
		s.FileListFilePath,
		s.FilePaths,
		s.DataExportFolder,
		s.PreProcessingScriptFilePath,
		s.ExecutePreProcessingScript,
		s.PostProcessingScriptFilePath,
		s.ExecutePostProcessingScript,
		s.CentralFileOpenOption,
		s.DeleteLocalAfter,
		s.DiscardWorksetsOnDetach,
		s.WorksetConfigurationOption,
		s.AuditOnOpening,
		s.ProcessingOption,
		s.SingleTaskVersion,
		s.VersionSelectionOption,
		s.FallBackToMinimumVersion,
		s.BatchTaskVersion,
		s.TaskData,
	)
	return s
}

// Validate returns the problems that would prevent a batch run from starting.
// An empty result means the settings are usable.
func (s *BatchSettings) Validate() []string {
	var problems []string

	checkFile := func(label, path string) {
		if IsBlank(path) {
			problems = append(problems, fmt.Sprintf("%s is not set", label))
			return
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			problems = append(problems, fmt.Sprintf("%s %q does not exist", label, path))
		}
	}

	checkFile("task script", s.TaskScriptFilePath.Value())

	if s.ProcessingOption.Value() == BatchFileProcessing && len(s.FilePaths.Value()) == 0 {
		checkFile("file list", s.FileListFilePath.Value())
	}
	if s.ExecutePreProcessingScript.Value() {
		checkFile("pre-processing script", s.PreProcessingScriptFilePath.Value())
	}
	if s.ExecutePostProcessingScript.Value() {
		checkFile("post-processing script", s.PostProcessingScriptFilePath.Value())
	}
	if s.ProcessingTimeOutInMinutes.Value() < 0 {
		problems = append(problems, "processing timeout cannot be negative")
	}
	if !IsBlank(s.DataExportFolder.Value()) {
		if info, err := os.Stat(s.DataExportFolder.Value()); err != nil || !info.IsDir() {
			problems = append(problems, fmt.Sprintf("data export folder %q does not exist", s.DataExportFolder.Value()))
		}
	}
	return problems
}
