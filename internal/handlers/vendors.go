package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/warehub-io/warehub/internal/models"
)

// listVendors returns vendors with optional status/category filters
func (rt *Router) listVendors(w http.ResponseWriter, req *http.Request) {
	list, err := rt.svc.Vendors.List(req.Context(),
		req.URL.Query().Get("status"),
		req.URL.Query().Get("main_category"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// getVendor returns one vendor with contacts and product links
func (rt *Router) getVendor(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vendor ID")
		return
	}

	vendor, err := rt.svc.Vendors.Get(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vendor)
}

// createVendor creates a new vendor
func (rt *Router) createVendor(w http.ResponseWriter, req *http.Request) {
	var vendor models.Vendor
	if err := json.NewDecoder(req.Body).Decode(&vendor); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if vendor.Name == "" {
		respondError(w, http.StatusBadRequest, "Vendor name is required")
		return
	}

	if err := rt.svc.Vendors.Create(req.Context(), &vendor); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, vendor)
}

// updateVendor updates an existing vendor
func (rt *Router) updateVendor(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vendor ID")
		return
	}

	vendor, err := rt.svc.Vendors.Get(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := json.NewDecoder(req.Body).Decode(vendor); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	vendor.ID = id

	if err := rt.svc.Vendors.Update(req.Context(), vendor); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vendor)
}

// deleteVendor removes a vendor unless products are still linked
func (rt *Router) deleteVendor(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vendor ID")
		return
	}

	if err := rt.svc.Vendors.Delete(req.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Vendor deleted successfully",
	})
}

// getVendorStats returns aggregate vendor counts
func (rt *Router) getVendorStats(w http.ResponseWriter, req *http.Request) {
	stats, err := rt.svc.Vendors.GetStats(req.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// importVendorsExcel bulk-creates vendors from an .xlsx upload
func (rt *Router) importVendorsExcel(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(16 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, _, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Excel file is required")
		return
	}
	defer file.Close()

	result, err := rt.svc.Vendors.ImportExcel(req.Context(), file)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// listVendorProducts returns the products a vendor supplies
func (rt *Router) listVendorProducts(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vendor ID")
		return
	}

	vendor, err := rt.svc.Vendors.Get(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vendor.Products)
}

// addVendorProduct links a product to a vendor
func (rt *Router) addVendorProduct(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vendor ID")
		return
	}

	var link models.VendorProduct
	if err := json.NewDecoder(req.Body).Decode(&link); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	link.VendorID = id
	if link.ProductID == 0 {
		respondError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	if err := rt.svc.Vendors.AddProduct(req.Context(), &link); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, link)
}

// removeVendorProduct unlinks a product from a vendor
func (rt *Router) removeVendorProduct(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vendor ID")
		return
	}
	productID, err := pathID(req, "productId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := rt.svc.Vendors.RemoveProduct(req.Context(), id, productID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Product removed from vendor",
	})
}

// listVendorContacts returns the contacts of a vendor
func (rt *Router) listVendorContacts(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vendor ID")
		return
	}

	contacts, err := rt.svc.Vendors.Contacts(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

// addVendorContact creates a contact for a vendor
func (rt *Router) addVendorContact(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vendor ID")
		return
	}

	var contact models.VendorContact
	if err := json.NewDecoder(req.Body).Decode(&contact); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	contact.VendorID = id
	if contact.Name == "" {
		respondError(w, http.StatusBadRequest, "Contact name is required")
		return
	}

	if err := rt.svc.Vendors.AddContact(req.Context(), &contact); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, contact)
}

// updateVendorContact updates a vendor contact
func (rt *Router) updateVendorContact(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	var contact models.VendorContact
	if err := rt.db.First(&contact, id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Vendor contact not found")
		return
	}

	if err := json.NewDecoder(req.Body).Decode(&contact); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	contact.ID = id

	if err := rt.svc.Vendors.UpdateContact(req.Context(), &contact); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

// deleteVendorContact removes a vendor contact
func (rt *Router) deleteVendorContact(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	if err := rt.svc.Vendors.DeleteContact(req.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Vendor contact deleted successfully",
	})
}
