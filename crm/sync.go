package crm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"hotel-platform/metrics"
	"hotel-platform/models"
	"hotel-platform/utils"
)

const (
	ObjectBranch         = "Branch__c"
	ObjectRoom           = "Room__c"
	ObjectBooking        = "Booking__c"
	ObjectMenuItem       = "MenuItem__c"
	ObjectFoodOrder      = "Food__c"
	ObjectOrderItem      = "OrderItem__c"
	ObjectServiceRequest = "ServiceRequest__c"

	// ExternalIDField holds the local primary key on every keyed object.
	ExternalIDField = "MySQL_Id__c"
	NameField       = "Name"
)

// Target is the subset of the CRM client used by the sync job.
type Target interface {
	Upsert(ctx context.Context, object, keyField, keyValue string, fields map[string]any) (string, error)
	FindID(ctx context.Context, object, field, value string) (string, error)
}

// Source reads local records for the sync job. Rooms carry their Branch and
// bookings carry their Room and Branch.
type Source interface {
	Branches(ctx context.Context) ([]models.Branch, error)
	Rooms(ctx context.Context) ([]models.Room, error)
	Bookings(ctx context.Context) ([]models.Booking, error)
	MenuItems(ctx context.Context) ([]models.MenuItem, error)
	FoodOrders(ctx context.Context) ([]models.FoodOrder, error)
	OrderItems(ctx context.Context) ([]models.OrderItem, error)
	ServiceRequests(ctx context.Context) ([]models.ServiceRequest, error)
	SetBookingExternalID(ctx context.Context, bookingID uint, externalID string) error
}

type ObjectStats struct {
	Upserted int `json:"upserted"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

type Report struct {
	Started  time.Time               `json:"started"`
	Duration time.Duration           `json:"duration"`
	Objects  map[string]*ObjectStats `json:"objects"`
}

func (r *Report) stats(object string) *ObjectStats {
	s, ok := r.Objects[object]
	if !ok {
		s = &ObjectStats{}
		r.Objects[object] = s
	}
	return s
}

func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Objects {
		n += s.Failed
	}
	return n
}

func (r *Report) Upserted() int {
	n := 0
	for _, s := range r.Objects {
		n += s.Upserted
	}
	return n
}

type Syncer struct {
	Source Source
	Target Target
	Log    logrus.FieldLogger

	report   *Report
	branches map[uint]string
}

func NewSyncer(src Source, target Target, log logrus.FieldLogger) *Syncer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Syncer{Source: src, Target: target, Log: log}
}

// Run pushes every local record to the CRM in parent-to-child order. A
// failing record is logged and counted; only a failing Source aborts the run.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	s.report = &Report{Started: time.Now(), Objects: map[string]*ObjectStats{}}
	s.branches = map[uint]string{}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{ObjectBranch, s.syncBranches},
		{ObjectRoom, s.syncRooms},
		{ObjectBooking, s.syncBookings},
		{ObjectMenuItem, s.syncMenuItems},
		{ObjectFoodOrder, s.syncFoodOrders},
		{ObjectOrderItem, s.syncOrderItems},
		{ObjectServiceRequest, s.syncServiceRequests},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return s.finish(), err
		}
		if err := step.fn(ctx); err != nil {
			return s.finish(), fmt.Errorf("sync %s: %w", step.name, err)
		}
		st := s.report.stats(step.name)
		s.Log.WithFields(logrus.Fields{
			"object":   step.name,
			"upserted": st.Upserted,
			"failed":   st.Failed,
			"skipped":  st.Skipped,
		}).Info("crm sync step done")
	}
	return s.finish(), nil
}

func (s *Syncer) finish() *Report {
	s.report.Duration = time.Since(s.report.Started)
	return s.report
}

func (s *Syncer) upsert(ctx context.Context, object, keyField, keyValue string, fields map[string]any) (string, bool) {
	id, err := s.Target.Upsert(ctx, object, keyField, keyValue, fields)
	if err != nil {
		s.fail(object, keyValue, err)
		return "", false
	}
	s.report.stats(object).Upserted++
	metrics.IncSyncRecord(object, "upserted")
	return id, true
}

func (s *Syncer) fail(object, key string, err error) {
	s.report.stats(object).Failed++
	metrics.IncSyncRecord(object, "failed")
	s.Log.WithError(err).WithFields(logrus.Fields{"object": object, "key": key}).Warn("crm record failed")
}

func (s *Syncer) skip(object, key, reason string) {
	s.report.stats(object).Skipped++
	metrics.IncSyncRecord(object, "skipped")
	s.Log.WithFields(logrus.Fields{"object": object, "key": key, "reason": reason}).Warn("crm record skipped")
}

// lookup resolves a parent record's CRM id. An empty result or an error both
// leave the child without its parent, which is reported as a skip.
func (s *Syncer) lookup(ctx context.Context, object, field, value string) (string, error) {
	id, err := s.Target.FindID(ctx, object, field, value)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%s %s=%s not found", object, field, value)
	}
	return id, nil
}

// RoomName is the CRM key for a room; room numbers repeat across branches.
func RoomName(branchName, roomNumber string) string {
	if branchName == "" {
		return roomNumber
	}
	return branchName + "-" + roomNumber
}

func key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *Syncer) syncBranches(ctx context.Context) error {
	branches, err := s.Source.Branches(ctx)
	if err != nil {
		return err
	}
	for _, b := range branches {
		id, ok := s.upsert(ctx, ObjectBranch, NameField, b.Name, map[string]any{
			"Address__c": b.Address,
			"City__c":    b.City,
			"State__c":   b.State,
			"Country__c": b.Country,
			"Zip__c":     b.ZipCode,
			"Phone__c":   b.Phone,
		})
		if ok {
			s.branches[b.ID] = id
		}
	}
	return nil
}

func (s *Syncer) syncRooms(ctx context.Context) error {
	rooms, err := s.Source.Rooms(ctx)
	if err != nil {
		return err
	}
	for _, r := range rooms {
		name := RoomName(branchName(r.Branch), r.RoomNumber)
		branchID, ok := s.branches[r.BranchID]
		if !ok {
			s.skip(ObjectRoom, name, "branch not synced")
			continue
		}
		s.upsert(ctx, ObjectRoom, NameField, name, map[string]any{
			"Branch__c": branchID,
			"Type__c":   r.Type,
			"Price__c":  r.Price,
			"Status__c": r.Status,
		})
	}
	return nil
}

func (s *Syncer) syncBookings(ctx context.Context) error {
	bookings, err := s.Source.Bookings(ctx)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		k := key(b.ID)
		branchID, ok := s.branches[b.BranchID]
		if !ok {
			s.skip(ObjectBooking, k, "branch not synced")
			continue
		}
		if b.Room == nil {
			s.skip(ObjectBooking, k, "room missing")
			continue
		}
		roomID, err := s.lookup(ctx, ObjectRoom, NameField, RoomName(branchName(b.Branch), b.Room.RoomNumber))
		if err != nil {
			s.skip(ObjectBooking, k, err.Error())
			continue
		}

		id, ok := s.upsert(ctx, ObjectBooking, ExternalIDField, k, map[string]any{
			"Branch__c":        branchID,
			"Room__c":          roomID,
			"Customer_Name__c": b.CustomerName,
			"CheckIn_Date__c":  utils.FormatDate(time.Time(b.CheckIn)),
			"CheckOut_Date__c": utils.FormatDate(time.Time(b.CheckOut)),
			"Total_Amount__c":  b.TotalAmount,
			"Status__c":        b.Status,
		})
		if !ok || (b.ExternalID != nil && *b.ExternalID == id) {
			continue
		}
		if err := s.Source.SetBookingExternalID(ctx, b.ID, id); err != nil {
			s.Log.WithError(err).WithField("booking_id", b.ID).Warn("store booking external id")
		}
	}
	return nil
}

func (s *Syncer) syncMenuItems(ctx context.Context) error {
	items, err := s.Source.MenuItems(ctx)
	if err != nil {
		return err
	}
	for _, m := range items {
		k := key(m.ID)
		branchID, ok := s.branches[m.BranchID]
		if !ok {
			s.skip(ObjectMenuItem, k, "branch not synced")
			continue
		}
		s.upsert(ctx, ObjectMenuItem, ExternalIDField, k, map[string]any{
			"Name":            m.Name,
			"Branch__c":       branchID,
			"Category__c":     m.Category,
			"Price__c":        m.Price,
			"Availability__c": m.Availability,
		})
	}
	return nil
}

func (s *Syncer) syncFoodOrders(ctx context.Context) error {
	orders, err := s.Source.FoodOrders(ctx)
	if err != nil {
		return err
	}
	for _, o := range orders {
		k := key(o.ID)
		bookingID, err := s.lookup(ctx, ObjectBooking, ExternalIDField, key(o.BookingID))
		if err != nil {
			s.skip(ObjectFoodOrder, k, err.Error())
			continue
		}
		s.upsert(ctx, ObjectFoodOrder, ExternalIDField, k, map[string]any{
			"Booking__c":      bookingID,
			"Total_Amount__c": o.TotalAmount,
			"Status__c":       o.Status,
			"Order_Time__c":   o.OrderTime.UTC().Format(time.RFC3339),
		})
	}
	return nil
}

func (s *Syncer) syncOrderItems(ctx context.Context) error {
	items, err := s.Source.OrderItems(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		k := key(it.ID)
		orderID, err := s.lookup(ctx, ObjectFoodOrder, ExternalIDField, key(it.OrderID))
		if err != nil {
			s.skip(ObjectOrderItem, k, err.Error())
			continue
		}
		menuID, err := s.lookup(ctx, ObjectMenuItem, ExternalIDField, key(it.MenuItemID))
		if err != nil {
			s.skip(ObjectOrderItem, k, err.Error())
			continue
		}
		s.upsert(ctx, ObjectOrderItem, ExternalIDField, k, map[string]any{
			"FoodOrder__c":  orderID,
			"MenuItem__c":   menuID,
			"Quantity__c":   it.Quantity,
			"Price_Each__c": it.PriceEach,
			"SubTotal__c":   it.TotalPrice,
		})
	}
	return nil
}

func (s *Syncer) syncServiceRequests(ctx context.Context) error {
	requests, err := s.Source.ServiceRequests(ctx)
	if err != nil {
		return err
	}
	for _, r := range requests {
		k := key(r.ID)
		branchID, ok := s.branches[r.BranchID]
		if !ok {
			s.skip(ObjectServiceRequest, k, "branch not synced")
			continue
		}
		fields := map[string]any{
			"Branch__c":       branchID,
			"Service_Type__c": r.Type,
			"Description__c":  r.Description,
			"Status__c":       r.Status,
			"Request_At__c":   r.RequestAt.UTC().Format(time.RFC3339),
		}
		if r.CompletedAt != nil {
			fields["Completed_At__c"] = r.CompletedAt.UTC().Format(time.RFC3339)
		}
		if r.BookingID != nil {
			bookingID, err := s.lookup(ctx, ObjectBooking, ExternalIDField, key(*r.BookingID))
			if err != nil {
				s.skip(ObjectServiceRequest, k, err.Error())
				continue
			}
			fields["Booking__c"] = bookingID
		}
		s.upsert(ctx, ObjectServiceRequest, ExternalIDField, k, fields)
	}
	return nil
}

func branchName(b *models.Branch) string {
	if b == nil {
		return ""
	}
	return b.Name
}
