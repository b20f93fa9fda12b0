package binex

// FieldID identifies one field within a Monument/Geo record (§4.7). It is
// a closed enum: an unrecognized wire value decodes to FieldUnknown
// rather than failing the record (§7 "Schema errors").
//
// Only two numeric values are pinned by a worked example: FieldComment=0
// and FieldClimatic=14. The remainder of the table below is this port's
// own internally-consistent assignment -- the upstream fid.rs submodule
// that defines the authoritative numbering was not retrieved, so
// byte-for-byte interop with another BINEX encoder's wire values is not
// guaranteed, only round-tripping within this package.
type FieldID uint32

const (
	FieldComment FieldID = iota
	FieldSoftwareName
	FieldReceiverType
	FieldReceiverNumber
	FieldReceiverFirmwareVersion
	FieldAntennaType
	FieldAntennaNumber
	FieldAntennaMount
	FieldMarkerName
	FieldMarkerNumber
	FieldSiteName
	FieldSiteLocation
	FieldAgencyName
	FieldProjectName
	FieldClimatic
	FieldGeophysical
	FieldObserverName
	FieldObserverContact
	FieldUserID
	FieldExtra
	FieldAntennaECEF3D
	FieldAntennaGeo3D
	FieldAntennaOffset3D
	FieldGeocode
	FieldUnknown
)

// fieldIDTable bounds the range of recognized wire values; anything
// outside it -- or any value matching no entry -- is FieldUnknown.
var fieldIDTable = map[uint32]FieldID{
	uint32(FieldComment):                 FieldComment,
	uint32(FieldSoftwareName):            FieldSoftwareName,
	uint32(FieldReceiverType):            FieldReceiverType,
	uint32(FieldReceiverNumber):          FieldReceiverNumber,
	uint32(FieldReceiverFirmwareVersion): FieldReceiverFirmwareVersion,
	uint32(FieldAntennaType):             FieldAntennaType,
	uint32(FieldAntennaNumber):           FieldAntennaNumber,
	uint32(FieldAntennaMount):            FieldAntennaMount,
	uint32(FieldMarkerName):              FieldMarkerName,
	uint32(FieldMarkerNumber):            FieldMarkerNumber,
	uint32(FieldSiteName):                FieldSiteName,
	uint32(FieldSiteLocation):            FieldSiteLocation,
	uint32(FieldAgencyName):              FieldAgencyName,
	uint32(FieldProjectName):             FieldProjectName,
	uint32(FieldClimatic):                FieldClimatic,
	uint32(FieldGeophysical):             FieldGeophysical,
	uint32(FieldObserverName):            FieldObserverName,
	uint32(FieldObserverContact):         FieldObserverContact,
	uint32(FieldUserID):                  FieldUserID,
	uint32(FieldExtra):                   FieldExtra,
	uint32(FieldAntennaECEF3D):           FieldAntennaECEF3D,
	uint32(FieldAntennaGeo3D):            FieldAntennaGeo3D,
	uint32(FieldAntennaOffset3D):         FieldAntennaOffset3D,
	uint32(FieldGeocode):                 FieldGeocode,
}

// fieldIDFrom maps a decoded wire value to a FieldID, defaulting to
// FieldUnknown for anything the table does not recognize.
func fieldIDFrom(v uint32) FieldID {
	if fid, ok := fieldIDTable[v]; ok {
		return fid
	}
	return FieldUnknown
}

// repeatable reports whether multiple occurrences of this field within
// one record all survive (true, Comment only) or whether only the last
// wins (false, every other single-valued field, §4.7 "Uniqueness rule").
func (fid FieldID) repeatable() bool {
	return fid == FieldComment
}

// unhandled reports whether this FID is recognized but not decoded into
// a typed value in this package (§4.7: AntennaECEF3D, AntennaGeo3D,
// AntennaOffset3D, Geocode).
func (fid FieldID) unhandled() bool {
	switch fid {
	case FieldAntennaECEF3D, FieldAntennaGeo3D, FieldAntennaOffset3D, FieldGeocode:
		return true
	default:
		return false
	}
}

// MonumentGeoMetadata is the Monument/Geo record's 1-byte source tag
// (§4.7: "values include RNX2BIN, IGS, custom"). Like FieldID, its exact
// wire values are not pinned by any retrieved source; RNX2BIN is kept at
// the Go zero value since it is also the upstream default.
type MonumentGeoMetadata uint8

const (
	MetaRNX2BIN MonumentGeoMetadata = iota
	MetaIGS
	MetaUnknown = MonumentGeoMetadata(255)
)

func (m MonumentGeoMetadata) String() string {
	switch m {
	case MetaRNX2BIN:
		return "RNX2BIN"
	case MetaIGS:
		return "IGS"
	default:
		return "Unknown"
	}
}
