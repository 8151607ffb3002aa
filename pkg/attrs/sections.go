package attrs

import "github.com/vanderheijden86/prsconf/pkg/model"

// Form sections. Fields in no section (name, description, active flag) are
// always shown.
const (
	SectionIndex         = "prsIndex"
	SectionMethodAddress = "prsMethodAddress"
	SectionValueType     = "prsValueTypeCode"
	SectionEntityType    = "prsEntityTypeCode"
	SectionConfig        = "prsJsonConfigString"
	SectionUpdate        = "prsUpdate"
	SectionDefault       = "prsDefault"
	SectionStep          = "prsStep"
	SectionMeasureUnits  = "prsMeasureUnits"
	SectionInitiatedBy   = "initiatedBy"
	SectionParameters    = "parameters"
	SectionAlertConfig   = "alertConfig"
	SectionScheduleConf  = "scheduleConfig"
	SectionTagData       = "tagData"
)

// Partition splits form sections into the ones to show and the ones to hide
// for an entity kind.
type Partition struct {
	Visible []string
	Hidden  []string
}

var partitions = map[model.EntityKind]Partition{
	model.KindObject: {
		Visible: []string{SectionIndex},
		Hidden: []string{SectionMethodAddress, SectionValueType, SectionTagData, SectionConfig,
			SectionUpdate, SectionDefault, SectionStep, SectionMeasureUnits, SectionInitiatedBy,
			SectionParameters, SectionAlertConfig, SectionScheduleConf, SectionEntityType},
	},
	model.KindTag: {
		Visible: []string{SectionValueType, SectionUpdate, SectionStep, SectionMeasureUnits, SectionTagData},
		Hidden: []string{SectionIndex, SectionMethodAddress, SectionDefault, SectionConfig,
			SectionInitiatedBy, SectionParameters, SectionAlertConfig, SectionScheduleConf, SectionEntityType},
	},
	model.KindAlert: {
		Visible: []string{SectionAlertConfig},
		Hidden: []string{SectionIndex, SectionMethodAddress, SectionDefault, SectionUpdate, SectionStep,
			SectionMeasureUnits, SectionValueType, SectionInitiatedBy, SectionParameters, SectionConfig,
			SectionScheduleConf, SectionEntityType, SectionTagData},
	},
	model.KindMethod: {
		Visible: []string{SectionMethodAddress, SectionInitiatedBy, SectionParameters},
		Hidden: []string{SectionIndex, SectionEntityType, SectionConfig, SectionDefault, SectionUpdate,
			SectionStep, SectionMeasureUnits, SectionValueType, SectionAlertConfig, SectionScheduleConf,
			SectionTagData},
	},
	model.KindConnector: {
		Visible: []string{SectionConfig},
		Hidden: []string{SectionIndex, SectionMethodAddress, SectionEntityType, SectionDefault, SectionUpdate,
			SectionStep, SectionMeasureUnits, SectionValueType, SectionInitiatedBy, SectionParameters,
			SectionAlertConfig, SectionScheduleConf, SectionTagData},
	},
	model.KindSchedule: {
		Visible: []string{SectionScheduleConf},
		Hidden: []string{SectionIndex, SectionDefault, SectionUpdate, SectionStep, SectionMeasureUnits,
			SectionValueType, SectionMethodAddress, SectionInitiatedBy, SectionParameters, SectionAlertConfig,
			SectionConfig, SectionEntityType, SectionTagData},
	},
}

// Sections returns the visibility partition for kind. When structured is
// false, alerts and schedules edit their configuration as raw JSON instead
// of the sub-fields.
func Sections(kind model.EntityKind, structured bool) Partition {
	p := partitions[kind]
	if structured || (kind != model.KindAlert && kind != model.KindSchedule) {
		return p
	}
	return Partition{
		Visible: []string{SectionConfig},
		Hidden: []string{SectionIndex, SectionMethodAddress, SectionDefault, SectionUpdate, SectionStep,
			SectionMeasureUnits, SectionValueType, SectionInitiatedBy, SectionParameters, SectionAlertConfig,
			SectionScheduleConf, SectionEntityType, SectionTagData},
	}
}
