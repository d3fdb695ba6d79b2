package models

// Snapshot is an immutable view of every record array the dashboard reads.
type Snapshot struct {
	Vehicles       []Vehicle           `json:"vehicles"`
	Agreements     []Agreement         `json:"agreements"`
	Suppliers      []Supplier          `json:"suppliers"`
	Invoices       []Invoice           `json:"invoices"`
	PurchaseOrders []PurchaseOrder     `json:"purchaseOrders"`
	Buybacks       []Buyback           `json:"buybacks"`
	Contacts       []Contact           `json:"contacts"`
	Workflows      []Workflow          `json:"workflows"`
	Emails         []EmailHistoryEntry `json:"emails"`
}

// Normalize rewrites every vehicle reference into canonical form. It copies
// the slices it touches so the receiver's backing arrays are not shared.
func (s Snapshot) Normalize() Snapshot {
	out := s
	out.Vehicles = make([]Vehicle, len(s.Vehicles))
	for i, v := range s.Vehicles {
		v.ID = NormalizeVehicleID(v.ID)
		out.Vehicles[i] = v
	}
	out.Agreements = make([]Agreement, len(s.Agreements))
	for i, a := range s.Agreements {
		a.VehicleID = NormalizeVehicleID(a.VehicleID)
		out.Agreements[i] = a
	}
	out.Invoices = make([]Invoice, len(s.Invoices))
	for i, inv := range s.Invoices {
		inv.VehicleID = NormalizeVehicleID(inv.VehicleID)
		out.Invoices[i] = inv
	}
	out.PurchaseOrders = make([]PurchaseOrder, len(s.PurchaseOrders))
	for i, po := range s.PurchaseOrders {
		po.VehicleID = NormalizeVehicleID(po.VehicleID)
		out.PurchaseOrders[i] = po
	}
	out.Buybacks = make([]Buyback, len(s.Buybacks))
	for i, b := range s.Buybacks {
		b.VehicleID = NormalizeVehicleID(b.VehicleID)
		out.Buybacks[i] = b
	}
	out.Workflows = make([]Workflow, len(s.Workflows))
	for i, w := range s.Workflows {
		w.VehicleID = NormalizeVehicleID(w.VehicleID)
		out.Workflows[i] = w
	}
	return out
}

// VehicleByID looks a vehicle up by any form of its id.
func (s Snapshot) VehicleByID(id string) (Vehicle, bool) {
	want := NormalizeVehicleID(id)
	for _, v := range s.Vehicles {
		if NormalizeVehicleID(v.ID) == want {
			return v, true
		}
	}
	return Vehicle{}, false
}

// AgreementByID looks an agreement up by record id or agreement number.
func (s Snapshot) AgreementByID(id string) (Agreement, bool) {
	for _, a := range s.Agreements {
		if a.ID == id || a.AgreementID == id {
			return a, true
		}
	}
	return Agreement{}, false
}

// SupplierByID looks a supplier up by id.
func (s Snapshot) SupplierByID(id string) (Supplier, bool) {
	for _, sup := range s.Suppliers {
		if sup.ID == id {
			return sup, true
		}
	}
	return Supplier{}, false
}

// ContactByID looks a contact up by id.
func (s Snapshot) ContactByID(id string) (Contact, bool) {
	for _, c := range s.Contacts {
		if c.ID == id {
			return c, true
		}
	}
	return Contact{}, false
}
