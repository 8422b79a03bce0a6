package options

// Names of the options understood by the worker.
const (
	SettingsFile             = "settings_file"
	LogFolder                = "log_folder"
	SessionID                = "session_id"
	TaskData                 = "task_data"
	TestModeFolderPath       = "test_mode_folder_path"
	FileList                 = "file_list"
	RevitVersion             = "revit_version"
	TaskScript               = "task_script"
	Detach                   = "detach"
	CreateNewLocal           = "create_new_local"
	Worksets                 = "worksets"
	Audit                    = "audit"
	PerFileProcessingTimeout = "per_file_processing_timeout"
	Help                     = "help"
)

// Workset modes accepted by the worksets option.
const (
	WorksetsCloseAll   = "close_all"
	WorksetsOpenAll    = "open_all"
	WorksetsLastViewed = "last_viewed"
)

// SupportedRevitVersions lists the host versions accepted by revit_version.
var SupportedRevitVersions = []string{
	"2015", "2016", "2017", "2018", "2019", "2020",
	"2021", "2022", "2023", "2024", "2025", "2026",
}

// BatchOptions returns the option vocabulary shared by the orchestrator and
// the worker.
func BatchOptions() []Option {
	return []Option{
		{Name: SettingsFile, Parser: ExistingFile, Description: "Path of the settings file to run with"},
		{Name: LogFolder, Parser: ExistingFolder, Description: "Folder receiving the session log"},
		{Name: SessionID, Parser: FreeText, Description: "Identifier stamped on every log entry"},
		{Name: TaskData, Parser: FreeText, Description: "Free text handed to the task script"},
		{Name: TestModeFolderPath, Parser: ExistingFolder, Description: "Folder for test mode output"},
		{Name: FileList, Parser: ExistingFile, Description: "Text or CSV file listing the files to process"},
		{Name: RevitVersion, Parser: OneOf(SupportedRevitVersions...), Description: "Host version used for every file"},
		{Name: TaskScript, Parser: ExistingFile, Description: "Task script run against each file"},
		{Name: Detach, Description: "Detach workshared files from central"},
		{Name: CreateNewLocal, Description: "Create a new local copy of workshared files"},
		{Name: Worksets, Parser: OneOf(WorksetsCloseAll, WorksetsOpenAll, WorksetsLastViewed), Description: "Workset configuration: close_all, open_all or last_viewed"},
		{Name: Audit, Description: "Audit files on opening"},
		{Name: PerFileProcessingTimeout, Parser: PositiveInt, Description: "Per-file timeout in minutes"},
		{Name: Help, Description: "Show usage"},
	}
}

// DefaultRegistry returns a registry of BatchOptions.
func DefaultRegistry() *Registry {
	return MustNewRegistry(BatchOptions()...)
}
