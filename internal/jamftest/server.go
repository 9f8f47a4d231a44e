// Package jamftest provides an in-memory JAMF Pro server for tests. It
// implements the authentication, inventory, search, classic command,
// prestage and location lookup endpoints used by package jamf.
package jamftest

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"path"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ExpiresFormat selects how the token response encodes the expiry.
type ExpiresFormat int

const (
	ExpiresMillis ExpiresFormat = iota
	ExpiresRFC3339
	ExpiresOmitted
)

// Device is a device record held by the fake server.
type Device struct {
	ID           int
	Name         string
	SerialNumber string
	UDID         string
	AssetTag     string
	Model        string
	OSVersion    string
	WifiMac      string
	Username     string
	Building     string
	Department   string
	Room         string
	Applications []string
	EnforceName  bool
	// SmartGroups is the membership count returned by a recalculation.
	SmartGroups int
}

// Profile is a configuration profile held by the fake server.
type Profile struct {
	ID       int
	Name     string
	Excluded []int
}

// Server is a fake JAMF server. Use it as the handler of an
// httptest.Server.
type Server struct {
	Username string
	Password string
	TokenTTL time.Duration
	Expires  ExpiresFormat

	mu          sync.Mutex
	secret      []byte
	devices     map[int]*Device
	profiles    map[int]*Profile
	prestages   map[int]*prestage
	buildings   []named
	departments []named
	sites       []named
	revoked     map[string]bool
	logins      int
	flushed     map[int]int
	commands    map[int][]string
	requests    []string

	echo *echo.Echo
}

// New creates a server that accepts the given credentials and holds the
// given devices.
func New(username, password string, devices ...Device) *Server {
	s := &Server{
		Username:  username,
		Password:  password,
		TokenTTL:  30 * time.Minute,
		secret:    []byte(uuid.NewString()),
		devices:   make(map[int]*Device),
		profiles:  make(map[int]*Profile),
		prestages: make(map[int]*prestage),
		revoked:   make(map[string]bool),
		flushed:   make(map[int]int),
		commands:  make(map[int][]string),
	}
	for i := range devices {
		d := devices[i]
		s.devices[d.ID] = &d
		if d.Building != "" {
			addNamed(&s.buildings, d.Building)
		}
		if d.Department != "" {
			addNamed(&s.departments, d.Department)
		}
	}
	s.echo = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.mu.Unlock()
	s.echo.ServeHTTP(w, r)
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/uapi/v1/jamf-pro-server-url", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"url": "https://" + c.Request().Host})
	})
	e.POST("/uapi/auth/tokens", s.issueToken)

	api := e.Group("/uapi", s.requireToken)
	api.POST("/auth/current", s.currentAccount)
	api.POST("/auth/invalidateToken", s.invalidateToken)
	api.GET("/inventory/obj/mobileDevice", s.listDevices)
	api.GET("/inventory/obj/mobileDevice/:id", s.getDevice)
	api.GET("/inventory/obj/mobileDevice/:id/detail", s.getDeviceDetail)
	api.POST("/inventory/obj/mobileDevice/:id/update", s.updateDevice)
	api.POST("/inventory/searchMobileDevices", s.searchDevices)

	pro := e.Group("/api", s.requireToken)
	pro.GET("/v1/buildings", s.listNamed(func() []named { return s.buildings }))
	pro.GET("/v1/departments", s.listNamed(func() []named { return s.departments }))
	pro.GET("/settings/sites", s.listSites)
	pro.POST("/v1/mobile-devices/:id/recalculate-smart-groups", s.recalculateSmartGroups)
	pro.GET("/v2/mobile-device-prestages/scope", s.prestageAssignments)
	pro.GET("/v2/mobile-device-prestages/:id/scope", s.getPrestageScope)
	pro.PUT("/v2/mobile-device-prestages/:id/scope", s.putPrestageScope)

	classic := e.Group("/JSSResource", s.requireToken)
	classic.POST("/mobiledevicecommands/command/DeviceName/:name/id/:id", s.deviceNameCommand)
	classic.POST("/mobiledevicecommands/command/UpdateInventory/id/:id", s.command("UpdateInventory"))
	classic.POST("/mobiledevicecommands/command/EraseDevice/id/:id", s.command("EraseDevice"))
	classic.POST("/mobiledevicecommands/command/ScheduleOSUpdate/:action/id/:id", s.scheduleOSUpdate)
	classic.DELETE("/commandflush/mobiledevices/id/:id/status/:status", s.flushCommands)
	classic.GET("/mobiledevices/match/:query", s.matchDevices)
	classic.DELETE("/mobiledevices/id/:id", s.deleteDevice)
	classic.GET("/mobiledeviceconfigurationprofiles/id/:id", s.getProfile)
	classic.PUT("/mobiledeviceconfigurationprofiles/id/:id", s.putProfile)

	return e
}

// AddProfile registers a configuration profile.
func (s *Server) AddProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = &p
}

// Device returns a copy of the stored device.
func (s *Server) Device(id int) (Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return Device{}, false
	}
	return *d, true
}

// ProfileExclusions returns the excluded device IDs of a profile.
func (s *Server) ProfileExclusions(id int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil
	}
	return append([]int(nil), p.Excluded...)
}

// Logins returns how many tokens have been issued.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Commands returns the MDM commands queued for a device, in order, such as
// "UpdateInventory" or "ScheduleOSUpdate/2". Renames are not included.
func (s *Server) Commands(id int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands[id]...)
}

// Flushes returns how many command flushes a device has received.
func (s *Server) Flushes(id int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushed[id]
}

// Requests returns "METHOD /path" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// SetPassword changes the accepted password, as if it had been rotated.
func (s *Server) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Password = password
}

// IssueToken mints a token directly, for tests that configure an API token.
func (s *Server) IssueToken(ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sign(ttl)
}

func (s *Server) sign(ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   s.Username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) issueToken(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, pass, ok := c.Request().BasicAuth()
	if !ok || user != s.Username || pass != s.Password {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}
	token, err := s.sign(s.TokenTTL)
	if err != nil {
		return err
	}
	s.logins++

	body := map[string]any{"token": token}
	expires := time.Now().Add(s.TokenTTL)
	switch s.Expires {
	case ExpiresMillis:
		body["expires"] = expires.UnixMilli()
	case ExpiresRFC3339:
		body["expires"] = expires.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if !ok {
			return c.NoContent(http.StatusUnauthorized)
		}
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			return c.NoContent(http.StatusUnauthorized)
		}

		s.mu.Lock()
		revoked := s.revoked[claims.ID]
		s.mu.Unlock()
		if revoked {
			return c.NoContent(http.StatusUnauthorized)
		}
		c.Set("jti", claims.ID)
		return next(c)
	}
}

func (s *Server) currentAccount(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"username": s.Username})
}

func (s *Server) invalidateToken(c echo.Context) error {
	jti, _ := c.Get("jti").(string)
	s.mu.Lock()
	s.revoked[jti] = true
	s.mu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

// deviceJSON renders a device the way the universal API does, with the ID
// as a string.
func deviceJSON(d *Device) map[string]any {
	return map[string]any{
		"id":             strconv.Itoa(d.ID),
		"name":           d.Name,
		"serialNumber":   d.SerialNumber,
		"udid":           d.UDID,
		"assetTag":       d.AssetTag,
		"model":          d.Model,
		"osVersion":      d.OSVersion,
		"wifiMacAddress": d.WifiMac,
		"username":       d.Username,
	}
}

func (s *Server) detailJSON(d *Device) map[string]any {
	out := deviceJSON(d)
	apps := make([]any, 0, len(d.Applications))
	for _, a := range d.Applications {
		apps = append(apps, map[string]any{"name": a})
	}
	out["enforceName"] = d.EnforceName
	out["location"] = map[string]any{
		"username":   d.Username,
		"room":       d.Room,
		"building":   namedRef(s.buildings, d.Building),
		"department": namedRef(s.departments, d.Department),
	}
	out["ios"] = map[string]any{
		"osVersion":    d.OSVersion,
		"model":        d.Model,
		"applications": apps,
		"network": map[string]any{
			"cellularTechnology": "none",
			"roaming":            false,
		},
	}
	return out
}

func (s *Server) sortedDevices() []*Device {
	out := make([]*Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) lookup(c echo.Context) (*Device, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, ok := s.devices[id]
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "device not found")
	}
	return d, nil
}

func (s *Server) listDevices(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.devices))
	for _, d := range s.sortedDevices() {
		out = append(out, deviceJSON(d))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getDevice(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deviceJSON(d))
}

func (s *Server) getDeviceDetail(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.detailJSON(d))
}

// updateBody keeps location values as pointers so an explicit null can
// be told apart from a missing key.
type updateBody struct {
	AssetTag    *string            `json:"assetTag"`
	EnforceName *bool              `json:"enforceName"`
	Location    map[string]*string `json:"location"`
}

func (s *Server) updateDevice(c echo.Context) error {
	var body updateBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(c)
	if err != nil {
		return err
	}

	updated := *d
	if body.AssetTag != nil {
		updated.AssetTag = *body.AssetTag
	}
	if body.EnforceName != nil {
		updated.EnforceName = *body.EnforceName
	}
	for key, value := range body.Location {
		v := ""
		if value != nil {
			v = *value
		}
		switch key {
		case "username":
			updated.Username = v
		case "room":
			updated.Room = v
		case "buildingId":
			name, ok := nameByID(s.buildings, v)
			if !ok {
				return c.String(http.StatusBadRequest, "unknown building id "+v)
			}
			updated.Building = name
		case "departmentId":
			name, ok := nameByID(s.departments, v)
			if !ok {
				return c.String(http.StatusBadRequest, "unknown department id "+v)
			}
			updated.Department = name
		}
	}
	*d = updated
	return c.NoContent(http.StatusOK)
}

type searchBody struct {
	PageNumber   int    `json:"pageNumber"`
	PageSize     int    `json:"pageSize"`
	Name         string `json:"name"`
	SerialNumber string `json:"serialNumber"`
	UDID         string `json:"udid"`
	AssetTag     string `json:"assetTag"`
}

// matches applies the server's prefix matching on every given criterion.
func (b searchBody) matches(d *Device) bool {
	check := func(term, value string) bool {
		return term == "" || strings.HasPrefix(strings.ToLower(value), strings.ToLower(term))
	}
	return check(b.Name, d.Name) &&
		check(b.SerialNumber, d.SerialNumber) &&
		check(b.UDID, d.UDID) &&
		check(b.AssetTag, d.AssetTag)
}

func (s *Server) searchDevices(c echo.Context) error {
	var body searchBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if body.PageSize <= 0 {
		body.PageSize = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*Device
	for _, d := range s.sortedDevices() {
		if body.matches(d) {
			matched = append(matched, d)
		}
	}

	start := body.PageNumber * body.PageSize
	end := start + body.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	results := make([]map[string]any, 0, end-start)
	for _, d := range matched[start:end] {
		results = append(results, deviceJSON(d))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"totalCount": len(matched),
		"results":    results,
	})
}

func (s *Server) deviceNameCommand(c echo.Context) error {
	name := strings.TrimSpace(c.Param("name"))

	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(c)
	if err != nil {
		return err
	}
	if name == "" {
		return c.String(http.StatusBadRequest, "device name is required")
	}
	for _, other := range s.devices {
		if other.ID != d.ID && strings.EqualFold(other.Name, name) {
			return c.String(http.StatusConflict, "duplicate device name")
		}
	}
	d.Name = name
	return c.XMLBlob(http.StatusCreated, []byte(fmt.Sprintf(
		"<mobile_device_command><command>DeviceName</command><mobile_devices><mobile_device><id>%d</id></mobile_device></mobile_devices></mobile_device_command>",
		d.ID)))
}

func (s *Server) flushCommands(c echo.Context) error {
	switch c.Param("status") {
	case "Pending", "Failed", "Pending+Failed":
	default:
		return c.String(http.StatusBadRequest, "invalid status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(c)
	if err != nil {
		return err
	}
	s.flushed[d.ID]++
	return c.NoContent(http.StatusOK)
}

func (s *Server) deleteDevice(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(c)
	if err != nil {
		return err
	}
	delete(s.devices, d.ID)
	return c.NoContent(http.StatusOK)
}

type xmlProfileDevice struct {
	ID   int    `xml:"id"`
	Name string `xml:"name"`
	UDID string `xml:"udid"`
}

type xmlProfile struct {
	XMLName  xml.Name           `xml:"configuration_profile"`
	ID       int                `xml:"general>id"`
	Name     string             `xml:"general>name"`
	Excluded []xmlProfileDevice `xml:"scope>exclusions>mobile_devices>mobile_device"`
}

type xmlProfileUpdate struct {
	XMLName       xml.Name `xml:"configuration_profile"`
	MobileDevices *struct {
		Devices []xmlProfileDevice `xml:"mobile_device"`
	} `xml:"scope>exclusions>mobile_devices"`
}

func (s *Server) profile(c echo.Context) (*Profile, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	return p, nil
}

func (s *Server) getProfile(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.profile(c)
	if err != nil {
		return err
	}
	doc := xmlProfile{ID: p.ID, Name: p.Name}
	for _, id := range p.Excluded {
		entry := xmlProfileDevice{ID: id}
		if d, ok := s.devices[id]; ok {
			entry.Name = d.Name
			entry.UDID = d.UDID
		}
		doc.Excluded = append(doc.Excluded, entry)
	}
	return c.XML(http.StatusOK, doc)
}

func (s *Server) putProfile(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	var update xmlProfileUpdate
	if err := xml.Unmarshal(data, &update); err != nil {
		return c.String(http.StatusBadRequest, "invalid xml")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.profile(c)
	if err != nil {
		return err
	}
	if update.MobileDevices != nil {
		p.Excluded = p.Excluded[:0]
		for _, d := range update.MobileDevices.Devices {
			p.Excluded = append(p.Excluded, d.ID)
		}
	}
	return c.XMLBlob(http.StatusCreated, []byte(fmt.Sprintf("<configuration_profile><id>%d</id></configuration_profile>", p.ID)))
}

type named struct {
	ID   int
	Name string
}

// addNamed appends name with the next free ID unless it is already listed,
// and returns its ID.
func addNamed(list *[]named, name string) int {
	for _, n := range *list {
		if n.Name == name {
			return n.ID
		}
	}
	id := len(*list) + 1
	*list = append(*list, named{ID: id, Name: name})
	return id
}

// nameByID resolves an ID sent by a client. An empty ID clears the field.
func nameByID(list []named, id string) (string, bool) {
	if id == "" {
		return "", true
	}
	for _, n := range list {
		if strconv.Itoa(n.ID) == id {
			return n.Name, true
		}
	}
	return "", false
}

func namedRef(list []named, name string) any {
	for _, n := range list {
		if n.Name == name {
			return map[string]any{"id": strconv.Itoa(n.ID), "name": n.Name}
		}
	}
	return nil
}

func namedJSON(list []named) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, n := range list {
		out = append(out, map[string]any{"id": strconv.Itoa(n.ID), "name": n.Name})
	}
	return out
}

// AddBuilding registers a building and returns its ID. Buildings named by
// the initial devices are registered by New.
func (s *Server) AddBuilding(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addNamed(&s.buildings, name)
}

// AddDepartment registers a department and returns its ID.
func (s *Server) AddDepartment(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addNamed(&s.departments, name)
}

// AddSite registers a site and returns its ID.
func (s *Server) AddSite(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addNamed(&s.sites, name)
}

// listNamed serves a paginated collection using the page and page-size
// query parameters.
func (s *Server) listNamed(list func() []named) echo.HandlerFunc {
	return func(c echo.Context) error {
		page, _ := strconv.Atoi(c.QueryParam("page"))
		size, err := strconv.Atoi(c.QueryParam("page-size"))
		if err != nil || size <= 0 {
			size = 100
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		all := namedJSON(list())
		start := min(page*size, len(all))
		end := min(start+size, len(all))
		return c.JSON(http.StatusOK, map[string]any{
			"totalCount": len(all),
			"results":    all[start:end],
		})
	}
}

func (s *Server) listSites(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, namedJSON(s.sites))
}

func (s *Server) recalculateSmartGroups(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"count": d.SmartGroups})
}

func (s *Server) command(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, err := s.lookup(c)
		if err != nil {
			return err
		}
		return s.queue(c, d, name)
	}
}

func (s *Server) scheduleOSUpdate(c echo.Context) error {
	action := c.Param("action")
	if action != "1" && action != "2" {
		return c.String(http.StatusBadRequest, "install action must be 1 or 2")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(c)
	if err != nil {
		return err
	}
	return s.queue(c, d, "ScheduleOSUpdate/"+action)
}

func (s *Server) queue(c echo.Context, d *Device, command string) error {
	s.commands[d.ID] = append(s.commands[d.ID], command)
	name, _, _ := strings.Cut(command, "/")
	return c.XMLBlob(http.StatusCreated, []byte(fmt.Sprintf(
		"<mobile_device_command><command>%s</command><mobile_devices><mobile_device><id>%d</id></mobile_device></mobile_devices></mobile_device_command>",
		name, d.ID)))
}

type xmlMatchDevice struct {
	ID           int    `xml:"id"`
	Name         string `xml:"name"`
	UDID         string `xml:"udid"`
	SerialNumber string `xml:"serial_number"`
}

type xmlMatch struct {
	XMLName xml.Name         `xml:"mobile_devices"`
	Size    int              `xml:"size"`
	Devices []xmlMatchDevice `xml:"mobile_device"`
}

// matchDevices compares the query against several fields without regard to
// case, treating "*" as a wildcard.
func (s *Server) matchDevices(c echo.Context) error {
	query := strings.ToLower(c.Param("query"))
	match := func(value string) bool {
		value = strings.ToLower(value)
		if strings.Contains(query, "*") {
			ok, _ := path.Match(query, value)
			return ok
		}
		return value == query
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := xmlMatch{}
	for _, d := range s.sortedDevices() {
		if match(d.Name) || match(d.SerialNumber) || match(d.UDID) ||
			match(d.WifiMac) || match(d.AssetTag) || match(d.Username) {
			out.Devices = append(out.Devices, xmlMatchDevice{
				ID:           d.ID,
				Name:         d.Name,
				UDID:         d.UDID,
				SerialNumber: d.SerialNumber,
			})
		}
	}
	out.Size = len(out.Devices)
	return c.XML(http.StatusOK, out)
}

type prestage struct {
	serials     []string
	versionLock int
}

// AddPrestage registers a prestage enrollment scoped to the given serials.
func (s *Server) AddPrestage(id int, serials ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prestages[id] = &prestage{serials: append([]string(nil), serials...)}
}

// PrestageSerials returns the serial numbers assigned to a prestage.
func (s *Server) PrestageSerials(id int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prestages[id]
	if !ok {
		return nil
	}
	return append([]string(nil), p.serials...)
}

// BumpPrestage changes a prestage's version lock, as a concurrent edit by
// another client would.
func (s *Server) BumpPrestage(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.prestages[id]; ok {
		p.versionLock++
	}
}

func (s *Server) prestage(c echo.Context) (int, *prestage, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, ok := s.prestages[id]
	if !ok {
		return 0, nil, echo.NewHTTPError(http.StatusNotFound, "prestage not found")
	}
	return id, p, nil
}

func prestageScopeJSON(id int, p *prestage) map[string]any {
	assignments := make([]map[string]any, 0, len(p.serials))
	for _, serial := range p.serials {
		assignments = append(assignments, map[string]any{
			"serialNumber":   serial,
			"assignmentDate": "2024-08-01T12:00:00Z",
			"userAssigned":   "apiuser",
		})
	}
	return map[string]any{
		"prestageId":  strconv.Itoa(id),
		"assignments": assignments,
		"versionLock": p.versionLock,
	}
}

func (s *Server) prestageAssignments(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bySerial := map[string]string{}
	for id, p := range s.prestages {
		for _, serial := range p.serials {
			bySerial[serial] = strconv.Itoa(id)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"serialsByPrestageId": bySerial})
}

func (s *Server) getPrestageScope(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, p, err := s.prestage(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prestageScopeJSON(id, p))
}

type prestageScopeBody struct {
	SerialNumbers []string `json:"serialNumbers"`
	VersionLock   *int     `json:"versionLock"`
}

func (s *Server) putPrestageScope(c echo.Context) error {
	var body prestageScopeBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil || body.VersionLock == nil {
		return c.String(http.StatusBadRequest, "serialNumbers and versionLock are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, p, err := s.prestage(c)
	if err != nil {
		return err
	}
	if *body.VersionLock != p.versionLock {
		return c.JSON(http.StatusConflict, map[string]any{
			"httpStatus": http.StatusConflict,
			"errors":     []map[string]string{{"code": "OPTIMISTIC_LOCK_FAILED"}},
		})
	}
	for otherID, other := range s.prestages {
		if otherID == id {
			continue
		}
		for _, serial := range body.SerialNumbers {
			if slices.Contains(other.serials, serial) {
				return c.String(http.StatusBadRequest, fmt.Sprintf("%s is assigned to prestage %d", serial, otherID))
			}
		}
	}
	p.serials = append([]string(nil), body.SerialNumbers...)
	p.versionLock++
	return c.JSON(http.StatusOK, prestageScopeJSON(id, p))
}
