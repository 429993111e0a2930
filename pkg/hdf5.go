package pdsp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jmbenlloch/go-hdf5"
)

var truthFields = []string{"pdg", "interacted", "n_neutron", "n_proton", "n_piplus", "n_piminus", "n_pi0"}

// H5Store reads the hit file produced by the ProtoDUNE-SP hit dumper. Every
// top-level group holds events/, plane_{0,1,2}_hits/ and optionally truth/.
//
// libhdf5 is usually built without thread safety, so every library call goes
// through mu. Workers still overlap their selection and classification work.
type H5Store struct {
	File     *hdf5.File
	Filename string
	mu       sync.Mutex
}

func OpenH5Store(filename string) (*H5Store, error) {
	f, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	return &H5Store{File: f, Filename: filename}, nil
}

func (s *H5Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.File.Close(); err != nil {
		return fmt.Errorf("error closing file %s: %w", s.Filename, err)
	}
	return nil
}

func (s *H5Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.File.NumObjects()
	if err != nil {
		return nil, fmt.Errorf("error counting groups in %s: %w", s.Filename, err)
	}
	keys := make([]string, 0, n)
	for i := uint(0); i < n; i++ {
		kind, err := s.File.ObjectTypeByIndex(i)
		if err != nil {
			return nil, err
		}
		if kind != hdf5.H5G_GROUP {
			continue
		}
		name, err := s.File.ObjectNameByIndex(i)
		if err != nil {
			return nil, err
		}
		keys = append(keys, name)
	}
	return keys, nil
}

// numericDataset is a dataset read as float64 values with its dimensions.
type numericDataset struct {
	values []float64
	dims   []uint
}

// rows returns the number of entries along the first dimension.
func (d numericDataset) rows() int {
	if len(d.dims) == 0 {
		return len(d.values)
	}
	return int(d.dims[0])
}

// width returns the number of values per row, taken from the trailing
// dimensions. A 1-D dataset has one value per row.
func (d numericDataset) width() int {
	if len(d.dims) < 2 {
		return 1
	}
	w := 1
	for _, n := range d.dims[1:] {
		w *= int(n)
	}
	return w
}

// readNumeric reads a numeric dataset whatever its integer or float type.
// The caller must hold s.mu.
func (s *H5Store) readNumeric(path string) (numericDataset, error) {
	dset, err := s.File.OpenDataset(path)
	if err != nil {
		return numericDataset{}, &ErrReadDataset{Path: path, Err: err}
	}
	defer dset.Close()

	space := dset.Space()
	dims, _, err := space.SimpleExtentDims()
	space.Close()
	if err != nil {
		return numericDataset{}, &ErrReadDataset{Path: path, Err: err}
	}
	npoints := 1
	for _, d := range dims {
		npoints *= int(d)
	}

	dtype, err := dset.Datatype()
	if err != nil {
		return numericDataset{}, &ErrReadDataset{Path: path, Err: err}
	}
	defer dtype.Close()

	values := make([]float64, npoints)
	if npoints == 0 {
		return numericDataset{values: values, dims: dims}, nil
	}

	switch class, size := dtype.Class(), dtype.Size(); {
	case class == hdf5.T_FLOAT && size == 4:
		err = readInto[float32](dset, values)
	case class == hdf5.T_FLOAT && size == 8:
		err = readInto[float64](dset, values)
	case (class == hdf5.T_INTEGER || class == hdf5.T_ENUM) && size == 1:
		err = readInto[uint8](dset, values)
	case class == hdf5.T_INTEGER && size == 2:
		err = readInto[int16](dset, values)
	case class == hdf5.T_INTEGER && size == 4:
		err = readInto[int32](dset, values)
	case class == hdf5.T_INTEGER && size == 8:
		err = readInto[int64](dset, values)
	default:
		err = fmt.Errorf("unsupported datatype class %v with size %d", class, size)
	}
	if err != nil {
		return numericDataset{}, &ErrReadDataset{Path: path, Err: err}
	}
	return numericDataset{values: values, dims: dims}, nil
}

func readInto[T uint8 | int16 | int32 | int64 | float32 | float64](dset *hdf5.Dataset, values []float64) error {
	// The array MUST be allocated before reading, HDF5 writes into it directly
	raw := make([]T, len(values))
	if err := dset.Read(&raw); err != nil {
		return err
	}
	for i, v := range raw {
		values[i] = float64(v)
	}
	return nil
}

// readEventIDs reads an event id dataset of shape N, Nx1 or NxK. The id
// width is the row width of the dataset.
func (s *H5Store) readEventIDs(path string) ([]EventID, error) {
	data, err := s.readNumeric(path)
	if err != nil {
		return nil, err
	}
	width := data.width()
	if width < 1 || width > MaxEventIDLen {
		return nil, &ErrReadDataset{Path: path, Err: fmt.Errorf("event ids with %d components, at most %d supported", width, MaxEventIDLen)}
	}
	ids := make([]EventID, data.rows())
	row := make([]uint32, width)
	for i := range ids {
		for j := range row {
			row[j] = uint32(data.values[i*width+j])
		}
		ids[i] = NewEventID(row...)
	}
	return ids, nil
}

func (s *H5Store) EventIDs(key string) ([]EventID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readEventIDs(key + "/events/event_id")
}

func (s *H5Store) NHits(key string) ([][NPlanes]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := key + "/events/nhits"
	data, err := s.readNumeric(path)
	if err != nil {
		return nil, err
	}
	if data.rows() > 0 && data.width() != NPlanes {
		return nil, &ErrReadDataset{Path: path, Err: fmt.Errorf("expected %d planes, got %d", NPlanes, data.width())}
	}
	nhits := make([][NPlanes]int, data.rows())
	for i := range nhits {
		for p := 0; p < NPlanes; p++ {
			nhits[i][p] = int(data.values[i*NPlanes+p])
		}
	}
	return nhits, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

func (s *H5Store) PlaneHits(key string, planeID int) (HitTable, error) {
	if !validPlane(planeID) {
		return HitTable{}, &ErrInvalidPlane{PlaneID: planeID}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	group := fmt.Sprintf("%s/plane_%d_hits", key, planeID)
	ids, err := s.readEventIDs(group + "/event_id")
	if err != nil {
		return HitTable{}, err
	}
	table := HitTable{EventID: ids}
	columns := []struct {
		name string
		dst  *[]float32
	}{
		{"wire", &table.Wire},
		{"time", &table.Time},
		{"integral", &table.Integral},
	}
	for _, c := range columns {
		data, err := s.readNumeric(group + "/" + c.name)
		if err != nil {
			return HitTable{}, err
		}
		*c.dst = toFloat32(data.values)
	}
	return table, nil
}

func (s *H5Store) Truth(key string) (TruthTable, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.File.LinkExists(key + "/truth") {
		return TruthTable{}, false, nil
	}

	columns := make(map[string][]float64, len(truthFields))
	var errs []error
	for _, name := range truthFields {
		data, err := s.readNumeric(key + "/truth/" + name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		columns[name] = data.values
	}
	if len(errs) > 0 {
		return TruthTable{}, false, errors.Join(errs...)
	}

	toInt32 := func(values []float64) []int32 {
		out := make([]int32, len(values))
		for i, v := range values {
			out[i] = int32(v)
		}
		return out
	}
	interacted := make([]bool, len(columns["interacted"]))
	for i, v := range columns["interacted"] {
		interacted[i] = v != 0
	}
	return TruthTable{
		PDG:        toInt32(columns["pdg"]),
		Interacted: interacted,
		NNeutron:   toInt32(columns["n_neutron"]),
		NProton:    toInt32(columns["n_proton"]),
		NPiPlus:    toInt32(columns["n_piplus"]),
		NPiMinus:   toInt32(columns["n_piminus"]),
		NPi0:       toInt32(columns["n_pi0"]),
	}, true, nil
}
