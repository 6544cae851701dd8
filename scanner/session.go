package scanner

// Counts summarizes one Scan call. TotalFiles is the number of files visited,
// including excluded ones.
type Counts struct {
	Application int `json:"application"`
	SBL         int `json:"sbl"`
	Config      int `json:"config"`
	TotalFiles  int `json:"total_files"`
	Excluded    int `json:"excluded"`
}

func (c *Counts) add(o Counts) {
	c.Application += o.Application
	c.SBL += o.SBL
	c.Config += o.Config
	c.TotalFiles += o.TotalFiles
	c.Excluded += o.Excluded
}

// Session accumulates scan results. It is owned by a single scan pass at a
// time; parallel scans use one session each and Merge afterwards. Results
// accumulate across Scan calls until Reset.
type Session struct {
	Firmware    []*FirmwareRecord
	Bootloaders []*BootloaderRecord
	Configs     []*ConfigRecord

	FilesVisited  int
	FilesExcluded int
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Reset() {
	s.Firmware = nil
	s.Bootloaders = nil
	s.Configs = nil
	s.FilesVisited = 0
	s.FilesExcluded = 0
}

// Merge appends other's records and counters to s.
func (s *Session) Merge(other *Session) {
	if other == nil {
		return
	}
	s.Firmware = append(s.Firmware, other.Firmware...)
	s.Bootloaders = append(s.Bootloaders, other.Bootloaders...)
	s.Configs = append(s.Configs, other.Configs...)
	s.FilesVisited += other.FilesVisited
	s.FilesExcluded += other.FilesExcluded
}

// Counts reports the accumulated totals.
func (s *Session) Counts() Counts {
	return Counts{
		Application: len(s.Firmware),
		SBL:         len(s.Bootloaders),
		Config:      len(s.Configs),
		TotalFiles:  s.FilesVisited,
		Excluded:    s.FilesExcluded,
	}
}

// FindFirmware returns the firmware record whose path or filename equals
// name, or nil.
func (s *Session) FindFirmware(name string) *FirmwareRecord {
	for _, fw := range s.Firmware {
		if fw.Path == name {
			return fw
		}
	}
	for _, fw := range s.Firmware {
		if fw.Filename == name {
			return fw
		}
	}
	return nil
}
