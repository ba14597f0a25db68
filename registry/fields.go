package registry

// CustomQueryField is the reserved raw passthrough field. It has no mapping.
const CustomQueryField = "customQuery"

// Tag hierarchies used by built-in mappings.
const (
	SensitivityHierarchy = "system.sensitivityClassification.Sensitivity"
)

// EntityTypes is the closed vocabulary of the entityType field.
var EntityTypes = []string{"file", "rdb", "kafka", "mail", "app", "salesforce", "other"}

// SensitivityLevels is the closed vocabulary of the sensitivity field.
var SensitivityLevels = []string{"Restricted", "High", "Medium", "Low"}

// sensitivityAliases maps legacy and lower-case labels to current labels.
var sensitivityAliases = map[string]string{
	"restricted":   "Restricted",
	"high":         "High",
	"medium":       "Medium",
	"low":          "Low",
	"Confidential": "High",
	"confidential": "High",
	"Internal":     "Medium",
	"internal":     "Medium",
	"Public":       "Low",
	"public":       "Low",
}

// builtinFields is the built-in field table, in canonical field order.
var builtinFields = []FieldMapping{
	{
		Name:         "entityType",
		BackendField: "type",
		Conversion:   ConversionNone,
		Vocabulary:   EntityTypes,
		Status:       StatusFunctioning,
	},
	{
		Name:         "containsPI",
		BackendField: "total_pii_count",
		Conversion:   ConversionToBool,
		Templates: Templates{
			True:  "total_pii_count > to_number(0)",
			False: "total_pii_count = to_number(0)",
		},
		Status: StatusFunctioning,
		Notes:  "PII presence is a derived count, not a stored flag",
	},
	{
		Name:         "sensitivity",
		BackendField: "catalog_tag",
		Conversion:   ConversionCatalogTag,
		TagHierarchy: SensitivityHierarchy,
		Aliases:      sensitivityAliases,
		Vocabulary:   SensitivityLevels,
		Status:       StatusFunctioning,
	},
	{
		Name:         "fileName",
		BackendField: "objectName",
		Conversion:   ConversionNone,
		PatternAware: true,
		Status:       StatusFunctioning,
		Notes:        "regex only between slashes; parenthesized groups are rejected",
	},
	{
		Name:         "fileType",
		BackendField: "fileExtension",
		Conversion:   ConversionNone,
		Templates: Templates{
			Multi: "{field} in ({values})",
		},
		Status: StatusFunctioning,
	},
	{
		Name:         "fileSize",
		BackendField: "sizeInBytes",
		Conversion:   ConversionToNumber,
		Status:       StatusFunctioning,
	},
	{
		Name:         "sizeInBytes",
		BackendField: "sizeInBytes",
		Conversion:   ConversionToNumber,
		Status:       StatusFunctioning,
	},
	{
		Name:         "modifiedDate",
		BackendField: "modified_date",
		Conversion:   ConversionToDate,
		Operators:    dateOperators,
		Status:       StatusFunctioning,
	},
	{
		Name:         "createdDate",
		BackendField: "created_date",
		Conversion:   ConversionToDate,
		Operators:    dateOperators,
		Status:       StatusUnknown,
	},
	{
		Name:         "lastScanned",
		BackendField: "scanDate",
		Conversion:   ConversionToDate,
		Operators:    dateOperators,
		Status:       StatusFunctioning,
	},
	{
		Name:         "lastAccessedDate",
		BackendField: "last_opened",
		Conversion:   ConversionToDate,
		Operators:    dateOperators,
		Status:       StatusNoData,
		Notes:        "access timestamps are not collected by most scanners",
	},
	{
		Name:         "datasource",
		BackendField: "source",
		Conversion:   ConversionNone,
		Status:       StatusFunctioning,
	},
	{
		Name:         "source",
		BackendField: "source",
		Conversion:   ConversionNone,
		Status:       StatusFunctioning,
	},
	{
		Name:         "system",
		BackendField: "system",
		Conversion:   ConversionNone,
		Status:       StatusFunctioning,
	},
	{
		Name:         "schemaName",
		BackendField: "schema",
		Conversion:   ConversionNone,
		Status:       StatusUnknown,
	},
	{
		Name:         "tableName",
		BackendField: "objectName",
		Conversion:   ConversionNone,
		Status:       StatusFunctioning,
	},
	{
		Name:         "dataType",
		BackendField: "data_type",
		Conversion:   ConversionNone,
		Status:       StatusNonFunctional,
		Notes:        "backend ignores column data type filters",
	},
	{
		Name:         "totalRows",
		BackendField: "total_rows",
		Conversion:   ConversionToNumber,
		Status:       StatusNoData,
		Notes:        "row counts are only populated for structured sources",
	},
	{
		Name:         "objectName",
		BackendField: "objectName",
		Conversion:   ConversionNone,
		Status:       StatusFunctioning,
	},
	{
		Name:         "objectType",
		BackendField: "objectType",
		Conversion:   ConversionNone,
		Status:       StatusUnknown,
	},
	{
		Name:         "detailedObjectType",
		BackendField: "detailedObjectType",
		Conversion:   ConversionNone,
		Status:       StatusFunctioning,
	},
	{
		Name:         "scanStatus",
		BackendField: "scanStatus",
		Conversion:   ConversionNone,
		Status:       StatusUnknown,
	},
	{
		Name:         "scannerType",
		BackendField: "scanner_type_group",
		Conversion:   ConversionNone,
		Status:       StatusFunctioning,
	},
	{
		Name:         "isEncrypted",
		BackendField: "encrypted",
		Conversion:   ConversionToBool,
		Status:       StatusFunctioning,
	},
	{
		Name:         "encryptionStatus",
		BackendField: "encrypted",
		Conversion:   ConversionToBool,
		Templates: Templates{
			Single: "{field}=to_bool({value})",
		},
		Aliases: map[string]string{
			"encrypted":     "true",
			"unencrypted":   "false",
			"not_encrypted": "false",
		},
		Status: StatusFunctioning,
	},
	{
		Name:         "accessLevel",
		BackendField: "open_access",
		Conversion:   ConversionNone,
		Aliases: map[string]string{
			"open":       "Yes",
			"public":     "Yes",
			"restricted": "No",
			"private":    "No",
		},
		Status: StatusFunctioning,
	},
	{
		Name:         "status",
		BackendField: "status",
		Conversion:   ConversionNone,
		Status:       StatusNonFunctional,
		Notes:        "object status is not indexed for search",
	},
	{
		Name:             "tags",
		BackendField:     "catalog_tag",
		Conversion:       ConversionCatalogTag,
		DynamicHierarchy: true,
		Status:           StatusFunctioning,
	},
}
